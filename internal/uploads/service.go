package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/probe"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/cloudinary"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/validate"
)

// ValidationError carries a caller-visible message for a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MeetingStore is the slice of the meetings repository the upload flow uses.
type MeetingStore interface {
	Create(ctx context.Context, m *models.Meeting) error
}

// VideoStore is the slice of the videos repository the upload flow uses.
type VideoStore interface {
	Create(ctx context.Context, v *models.Video) error
	SetRemote(ctx context.Context, meetingID uuid.UUID, remoteURL, remoteID string) error
}

// FileStore saves and inspects local video files.
type FileStore interface {
	Save(r io.Reader, filename string) (string, error)
	Delete(path string) error
	Exists(path string) bool
	Size(path string) (int64, error)
}

// MediaHost uploads local files to the remote media host.
type MediaHost interface {
	Enabled() bool
	UploadVideo(ctx context.Context, localPath, publicID string) (*cloudinary.UploadResult, error)
}

// Prober extracts best-effort video metadata.
type Prober interface {
	Duration(ctx context.Context, path string) *int
	Resolution(ctx context.Context, path string) *probe.Resolution
}

// Enqueuer hands automation trigger payloads to the job queue.
type Enqueuer interface {
	EnqueueAutomationTrigger(ctx context.Context, payload queue.AutomationTriggerPayload) error
}

// Input is the parsed multipart upload request.
type Input struct {
	File           io.Reader
	Filename       string
	MeetingTitle   string
	Description    string
	OrganizationID string
}

// Result is the successful upload response data.
type Result struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	Title     string    `json:"title"`
}

// Service runs the video upload flow.
type Service struct {
	meetings   MeetingStore
	videos     VideoStore
	files      FileStore
	host       MediaHost
	prober     Prober
	jobs       Enqueuer
	triggerURL string
	baseURL    string
	maxBytes   int64
	logger     *zap.Logger
}

// NewService creates an upload service. triggerURL is the automation engine
// endpoint for the upload flow; maxBytes caps the on-disk file size.
func NewService(meetings MeetingStore, videos VideoStore, files FileStore, host MediaHost,
	prober Prober, jobs Enqueuer, triggerURL, baseURL string, maxBytes int64, logger *zap.Logger) *Service {
	return &Service{
		meetings:   meetings,
		videos:     videos,
		files:      files,
		host:       host,
		prober:     prober,
		jobs:       jobs,
		triggerURL: triggerURL,
		baseURL:    baseURL,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Upload validates and stores the file, creates the meeting and video rows,
// then hands the file to the media host and enqueues the automation trigger.
// The returned Result only depends on the required steps; media host and
// trigger failures are soft.
func (s *Service) Upload(ctx context.Context, in Input) (*Result, error) {
	if in.Filename == "" {
		return nil, &ValidationError{Message: "No file selected"}
	}
	if !validate.IsValidVideoFile(in.Filename) {
		return nil, &ValidationError{Message: "Invalid file type. Allowed: " + validate.AllowedVideoExtensions()}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.Filename), "."))
	storedName := uuid.NewString() + "." + ext
	path, err := s.files.Save(in.File, storedName)
	if err != nil {
		return nil, fmt.Errorf("save video file: %w", err)
	}

	if err := s.checkStoredFile(path); err != nil {
		if delErr := s.files.Delete(path); delErr != nil {
			s.logger.Warn("failed to remove rejected upload", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}

	duration := s.prober.Duration(ctx, path)
	resolution := s.prober.Resolution(ctx, path)

	title := in.MeetingTitle
	if title == "" {
		title = "Untitled Meeting"
	}
	orgID := in.OrganizationID
	if orgID == "" {
		orgID = "default"
	}

	meeting := &models.Meeting{
		Title:          validate.SanitizeString(title, validate.MaxTitleLength),
		OrganizationID: orgID,
		MeetingCode:    "MEET_" + uuid.NewString()[:8],
		ScheduledAt:    time.Now(),
		Description:    validate.SanitizeString(in.Description, 0),
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	video := &models.Video{
		MeetingID:        meeting.ID,
		OriginalFilename: in.Filename,
		LocalFilePath:    path,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("create video record: %w", err)
	}

	s.logger.Info("video uploaded",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("video_id", video.ID.String()),
		zap.String("file", storedName),
		zap.Intp("duration_seconds", duration),
		zap.Bool("resolution_known", resolution != nil))

	s.publish(ctx, meeting, video, path, storedName)

	return &Result{MeetingID: meeting.ID, Title: meeting.Title}, nil
}

// checkStoredFile re-validates the just-written file on disk.
func (s *Service) checkStoredFile(path string) error {
	if !s.files.Exists(path) {
		return fmt.Errorf("stored file missing: %s", path)
	}
	size, err := s.files.Size(path)
	if err != nil {
		return fmt.Errorf("stat stored file: %w", err)
	}
	if size > s.maxBytes {
		return &ValidationError{
			Message: fmt.Sprintf("File too large: %.1fMB (max: %dMB)",
				float64(size)/(1024*1024), s.maxBytes/(1024*1024)),
		}
	}
	if !validate.IsValidVideoFile(path) {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		return &ValidationError{Message: "Invalid file type: " + ext}
	}
	return nil
}

// publish pushes the file to the media host and enqueues the trigger. All
// failures here are logged only.
func (s *Service) publish(ctx context.Context, meeting *models.Meeting, video *models.Video, path, storedName string) {
	videoURL := fmt.Sprintf("%s/api/videos/%s/file", s.baseURL, video.ID)
	var remoteID, remoteURL string

	if s.host != nil && s.host.Enabled() {
		publicID := fmt.Sprintf("%s_%s", meeting.ID, storedName)
		result, err := s.host.UploadVideo(ctx, path, publicID)
		if err != nil {
			s.logger.Error("media host upload failed",
				zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
		} else {
			remoteID = result.PublicID
			remoteURL = result.SecureURL
			videoURL = result.SecureURL
			if err := s.videos.SetRemote(ctx, meeting.ID, remoteURL, remoteID); err != nil {
				s.logger.Error("failed to record remote video URL",
					zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
			}
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"meeting_id":      meeting.ID,
		"video_url":       videoURL,
		"meeting_title":   meeting.Title,
		"organization_id": meeting.OrganizationID,
		"cloudinary_id":   remoteID,
		"cloudinary_url":  remoteURL,
	})
	if err != nil {
		s.logger.Error("failed to build trigger payload", zap.Error(err))
		return
	}
	err = s.jobs.EnqueueAutomationTrigger(ctx, queue.AutomationTriggerPayload{
		MeetingID: meeting.ID,
		URL:       s.triggerURL,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error("failed to enqueue automation trigger",
			zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
	}
}
