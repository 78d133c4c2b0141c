package domain

import "time"

// Blog represents a blog post as stored by the backend API. Unlike a
// product, a blog carries at most one inline image. CreatedAt is assigned
// by the backend and read-only from this service's perspective.
type Blog struct {
	ID        string    `json:"_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
