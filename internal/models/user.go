package models

import "time"

// User represents a user in the database.
type User struct {
	ID               int64     `db:"id" json:"id"`
	TelegramID       int64     `db:"telegram_id" json:"-"`
	TelegramUsername string    `db:"telegram_username" json:"username"`
	CreatedAt        time.Time `db:"created_at" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"-"`
}
