package api

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvard/skald/internal/models"
)

// CreatePostRequest is the request body for creating a post. Each operation
// carries its own statically defined validator, checked at the boundary
// before anything touches storage.
type CreatePostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
}

// Validate checks the request shape.
func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Excerpt, validation.Length(0, 500)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Tags, validation.Each(validation.Required, validation.Length(1, 50))),
		validation.Field(&r.Status, validation.In("draft", "published")),
	)
}

// Input converts the request to a store input, defaulting status to draft.
func (r CreatePostRequest) Input(authorID string) models.PostInput {
	status := models.PostStatus(r.Status)
	if !status.Valid() {
		status = models.StatusDraft
	}
	return models.PostInput{
		Title:    r.Title,
		Content:  r.Content,
		Excerpt:  r.Excerpt,
		Category: r.Category,
		Tags:     r.Tags,
		Status:   status,
		AuthorID: authorID,
	}
}

// UpdatePostRequest is a partial update; nil fields are left unchanged.
type UpdatePostRequest struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Excerpt  *string  `json:"excerpt"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
	Status   *string  `json:"status"`
}

// Validate checks the supplied fields only.
func (r UpdatePostRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Excerpt, validation.Length(0, 500)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Tags, validation.Each(validation.Required, validation.Length(1, 50))),
	); err != nil {
		return err
	}
	if r.Status != nil && !models.PostStatus(*r.Status).Valid() {
		return validation.Errors{"status": fmt.Errorf("must be either draft or published")}
	}
	return nil
}

// Patch converts the request to a store patch. The authenticated editor
// becomes the post's author: the author field records who last wrote the
// file.
func (r UpdatePostRequest) Patch(authorID string) models.PostPatch {
	p := models.PostPatch{
		Title:    r.Title,
		Content:  r.Content,
		Excerpt:  r.Excerpt,
		Category: r.Category,
		Tags:     r.Tags,
		AuthorID: &authorID,
	}
	if r.Status != nil {
		status := models.PostStatus(*r.Status)
		p.Status = &status
	}
	return p
}

// StatsResponse aggregates totals over the full post list.
type StatsResponse struct {
	TotalPosts     int        `json:"totalPosts"`
	PublishedPosts int        `json:"publishedPosts"`
	DraftPosts     int        `json:"draftPosts"`
	LastUpdate     *time.Time `json:"lastUpdate"`
}

// PreviewResponse carries the sanitized HTML render of a post.
type PreviewResponse struct {
	Slug string `json:"slug"`
	HTML string `json:"html"`
}
