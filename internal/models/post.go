// Package models defines the domain types for Skald.
package models

import "time"

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status value.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post represents a markdown post stored under the content root.
// Identity is the slug, derived once from the title at creation time.
type Post struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// PostInput carries caller-supplied fields for creating a post.
type PostInput struct {
	Title    string
	Content  string
	Excerpt  string
	Category string
	Tags     []string
	Status   PostStatus
	AuthorID string
}

// PostPatch carries a partial update. Nil fields are left unchanged.
type PostPatch struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string
	Tags     []string
	Status   *PostStatus
	AuthorID *string
}
