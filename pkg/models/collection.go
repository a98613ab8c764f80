package models

import (
	"time"
)

// Favorite is a user-saved image. The (UserID, ImageURL) pair is unique;
// saving the same image twice is a no-op.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Prompt    string    `json:"prompt" db:"prompt"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HistoryEntry is one generation the user chose to record. Append-only, no
// uniqueness constraint.
type HistoryEntry struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Prompt    string    `json:"prompt" db:"prompt"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
