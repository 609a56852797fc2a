package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is one uploaded video file belonging to a meeting. RemoteURL and
// RemoteID stay empty until the Cloudinary upload succeeds, then are set once.
type Video struct {
	ID               uuid.UUID `json:"id"`
	MeetingID        uuid.UUID `json:"meeting_id"`
	OriginalFilename string    `json:"original_filename"`
	LocalFilePath    string    `json:"local_file_path,omitempty"`
	RemoteURL        string    `json:"remote_url,omitempty"`
	RemoteID         string    `json:"remote_id,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
	CreatedAt        time.Time `json:"created_at"`
}
