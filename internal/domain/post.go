package domain

import "time"

// Post is a status update. Name and Avatar are copied from the author at
// creation time and are not kept in sync with later account changes.
type Post struct {
	ID       string    `json:"id" bson:"_id"`
	User     string    `json:"user" bson:"user"`
	Text     string    `json:"text" bson:"text"`
	Name     string    `json:"name" bson:"name"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Likes    []Like    `json:"likes" bson:"likes"`
	Comments []Comment `json:"comments" bson:"comments"`
	Date     time.Time `json:"date" bson:"date"`
}

func (p *Post) DocumentID() string { return p.ID }

// Like records a single user's like. A user appears at most once per post.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Comment is immutable once created; it can only be removed.
type Comment struct {
	ID     string    `json:"id" bson:"id"`
	User   string    `json:"user" bson:"user"`
	Text   string    `json:"text" bson:"text"`
	Name   string    `json:"name" bson:"name"`
	Avatar string    `json:"avatar" bson:"avatar"`
	Date   time.Time `json:"date" bson:"date"`
}
