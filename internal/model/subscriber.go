package model

import "time"

// Subscriber is a chat that opted in to reminder broadcasts. Subscribers are
// never hard-deleted; opt-out flips Enabled.
type Subscriber struct {
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
