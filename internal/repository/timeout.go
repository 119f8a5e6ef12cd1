// Package repository holds store-agnostic wrappers around domain.DocumentStore.
package repository

import (
	"context"
	"time"

	"github.com/msomdec/devconnector/internal/domain"
)

// TimeoutStore bounds every call to the wrapped store by a fixed deadline.
// An expired deadline surfaces as the backend's wrapped ErrStore.
type TimeoutStore struct {
	next    domain.DocumentStore
	timeout time.Duration
}

var _ domain.DocumentStore = (*TimeoutStore)(nil)

// WithTimeout wraps next. A non-positive timeout disables the bound.
func WithTimeout(next domain.DocumentStore, timeout time.Duration) *TimeoutStore {
	return &TimeoutStore{next: next, timeout: timeout}
}

func (s *TimeoutStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *TimeoutStore) FindByID(ctx context.Context, coll domain.Collection, id string, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.FindByID(ctx, coll, id, out)
}

func (s *TimeoutStore) FindOne(ctx context.Context, coll domain.Collection, filter domain.Filter, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.FindOne(ctx, coll, filter, out)
}

func (s *TimeoutStore) Find(ctx context.Context, coll domain.Collection, filter domain.Filter, sortDesc string, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.Find(ctx, coll, filter, sortDesc, out)
}

func (s *TimeoutStore) Insert(ctx context.Context, coll domain.Collection, doc domain.Document) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.Insert(ctx, coll, doc)
}

func (s *TimeoutStore) UpdateFields(ctx context.Context, coll domain.Collection, id string, fields map[string]any, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.UpdateFields(ctx, coll, id, fields, out)
}

func (s *TimeoutStore) DeleteByID(ctx context.Context, coll domain.Collection, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.DeleteByID(ctx, coll, id)
}

func (s *TimeoutStore) AppendToSubcollection(ctx context.Context, coll domain.Collection, id, path string, elem any, opts domain.AppendOptions, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.AppendToSubcollection(ctx, coll, id, path, elem, opts, out)
}

func (s *TimeoutStore) RemoveFromSubcollection(ctx context.Context, coll domain.Collection, id, path string, m domain.Match, out any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.next.RemoveFromSubcollection(ctx, coll, id, path, m, out)
}
