package domain

import "context"

// Collection names a set of documents of one entity type.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionProfiles Collection = "profiles"
	CollectionPosts    Collection = "posts"
)

// Document is anything that can be inserted into a Collection.
type Document interface {
	DocumentID() string
}

// Filter selects documents by equality on top-level string fields.
type Filter map[string]string

// Match selects elements of a sub-collection whose Field equals Value.
type Match struct {
	Field string
	Value string
}

// AppendOptions controls AppendToSubcollection.
type AppendOptions struct {
	// AtFront inserts the element at index 0 instead of the end.
	AtFront bool
	// Unless, when set, rejects the append with ErrElementExists if an
	// element matching it is already present.
	Unless *Match
}

// DocumentStore is CRUD over the entity collections plus atomic
// single-document sub-collection mutation. Every method that returns a
// document decodes it into out, which may be nil.
//
// Implementations return ErrNotFound when the addressed document is absent,
// ErrDuplicate on unique index violations, and wrap driver failures with
// ErrStore.
type DocumentStore interface {
	FindByID(ctx context.Context, coll Collection, id string, out any) error
	FindOne(ctx context.Context, coll Collection, filter Filter, out any) error
	// Find decodes all matching documents into out (a pointer to a slice),
	// ordered by the time-valued field sortDesc, newest first, when non-empty.
	Find(ctx context.Context, coll Collection, filter Filter, sortDesc string, out any) error
	Insert(ctx context.Context, coll Collection, doc Document) error
	// UpdateFields sets the given fields, leaving all others untouched.
	// Keys may be dotted paths into nested objects ("social.twitter").
	UpdateFields(ctx context.Context, coll Collection, id string, fields map[string]any, out any) error
	DeleteByID(ctx context.Context, coll Collection, id string) error
	AppendToSubcollection(ctx context.Context, coll Collection, id, path string, elem any, opts AppendOptions, out any) error
	// RemoveFromSubcollection removes every element of path matching m.
	// It returns ErrElementNotFound when nothing matched.
	RemoveFromSubcollection(ctx context.Context, coll Collection, id, path string, m Match, out any) error
}
