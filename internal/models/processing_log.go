package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Processing log status values.
const (
	LogStatusCompleted = "completed"
	LogStatusFailed    = "failed"
)

// ProcessingLog is one append-only entry per webhook event received.
type ProcessingLog struct {
	ID        uuid.UUID       `json:"id"`
	MeetingID uuid.UUID       `json:"meeting_id"`
	Step      string          `json:"step"`
	Status    string          `json:"status"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
