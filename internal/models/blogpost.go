package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is the AI-generated article for a meeting. Created once by the
// blog_generation_complete event; the Facebook fields are filled in later by
// the facebook_post_complete event.
type BlogPost struct {
	ID              uuid.UUID `json:"id"`
	MeetingID       uuid.UUID `json:"meeting_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Summary         string    `json:"summary,omitempty"`
	FacebookPostID  string    `json:"facebook_post_id,omitempty"`
	FacebookPostURL string    `json:"facebook_post_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Poster is a generated image attached to a blog post.
type Poster struct {
	ID               uuid.UUID `json:"id"`
	MeetingID        uuid.UUID `json:"meeting_id"`
	BlogPostID       uuid.UUID `json:"blog_post_id"`
	ImageURL         string    `json:"image_url"`
	GenerationPrompt string    `json:"generation_prompt,omitempty"`
	ImageType        string    `json:"image_type"`
	PostedToFacebook bool      `json:"posted_to_facebook"`
	CreatedAt        time.Time `json:"created_at"`
}
