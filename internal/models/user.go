package models

import "time"

// User is an editor identity established through OAuth login.
// Identity is the provider-assigned ID. Users are created on first
// login, refreshed on every subsequent login, and never deleted.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
