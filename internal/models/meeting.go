package models

import (
	"time"

	"github.com/google/uuid"
)

// Transcription status values. A meeting only ever moves pending -> completed.
const (
	TranscriptionStatusPending   = "pending"
	TranscriptionStatusCompleted = "completed"
)

// Meeting is the primary aggregate: one source recording or transcript session.
// OrganizationID is a free-form identifier ("default" when the uploader gives none).
type Meeting struct {
	ID                  uuid.UUID `json:"id"`
	OrganizationID      string    `json:"organization_id"`
	Title               string    `json:"title"`
	MeetingCode         string    `json:"meeting_code"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	Description         string    `json:"description,omitempty"`
	Transcript          string    `json:"transcript,omitempty"`
	Summary             string    `json:"summary,omitempty"`
	TranscriptionStatus string    `json:"transcription_status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
