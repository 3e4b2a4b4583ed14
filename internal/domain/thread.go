package domain

import "time"

const DefaultThreadTitle = "New Thread"

type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
