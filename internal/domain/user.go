package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	PasswordHash string    `json:"password" bson:"password"`
	Date         time.Time `json:"date" bson:"date"`
}

func (u *User) DocumentID() string { return u.ID }
