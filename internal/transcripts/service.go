package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/validate"
)

// Flow error sentinels mapped to HTTP statuses by the handler.
var (
	ErrInvalidMeetingID = errors.New("Invalid meeting ID format")
	ErrMeetingNotFound  = errors.New("Meeting not found in Supabase")
	ErrNoTranscript     = errors.New("Meeting does not have a transcript")
)

// Source reads meeting headers and minutes from the external transcript store.
type Source interface {
	FetchMeeting(ctx context.Context, id string) (*SourceMeeting, error)
	FetchMinutes(ctx context.Context, meetingID string) (*SourceMinutes, error)
}

// MeetingStore is the slice of the meetings repository the transcript flow uses.
type MeetingStore interface {
	Create(ctx context.Context, m *models.Meeting) error
	FindByTitleAndOrg(ctx context.Context, title, organizationID string) (*models.Meeting, error)
	UpdateHeader(ctx context.Context, m *models.Meeting) error
}

// Enqueuer hands automation trigger payloads to the job queue.
type Enqueuer interface {
	EnqueueAutomationTrigger(ctx context.Context, payload queue.AutomationTriggerPayload) error
}

// Result is the successful transcript-intake response data.
type Result struct {
	MeetingID           uuid.UUID `json:"meeting_id"`
	SupabaseMeetingID   string    `json:"supabase_meeting_id"`
	Title               string    `json:"title"`
	TranscriptAvailable bool      `json:"transcript_available"`
}

// Service runs the transcript intake flow: fetch the external meeting, mirror
// it locally, then kick off content generation.
type Service struct {
	source     Source
	meetings   MeetingStore
	jobs       Enqueuer
	triggerURL string
	logger     *zap.Logger
}

// NewService creates a transcript intake service.
func NewService(source Source, meetings MeetingStore, jobs Enqueuer, triggerURL string, logger *zap.Logger) *Service {
	return &Service{
		source:     source,
		meetings:   meetings,
		jobs:       jobs,
		triggerURL: triggerURL,
		logger:     logger,
	}
}

// Process validates the external meeting id, fetches its header and
// transcript, upserts the local mirror row and enqueues the trigger.
func (s *Service) Process(ctx context.Context, externalID, organizationID string) (*Result, error) {
	if !validate.IsValidUUID(externalID) {
		return nil, ErrInvalidMeetingID
	}

	meeting, err := s.source.FetchMeeting(ctx, externalID)
	if err != nil {
		s.logger.Error("failed to fetch meeting from supabase",
			zap.String("meeting_id", externalID), zap.Error(err))
		return nil, fmt.Errorf("fetch meeting: %w", err)
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}

	minutes, err := s.source.FetchMinutes(ctx, externalID)
	if err != nil {
		s.logger.Error("failed to fetch meeting minutes from supabase",
			zap.String("meeting_id", externalID), zap.Error(err))
		return nil, fmt.Errorf("fetch minutes: %w", err)
	}
	if minutes == nil {
		return nil, ErrMeetingNotFound
	}
	if minutes.Transcript == "" {
		return nil, ErrNoTranscript
	}

	local, err := s.mirrorMeeting(ctx, meeting, organizationID)
	if err != nil {
		return nil, fmt.Errorf("mirror meeting: %w", err)
	}

	s.enqueueTrigger(ctx, local.ID, meeting.OrganizationID)

	return &Result{
		MeetingID:           local.ID,
		SupabaseMeetingID:   externalID,
		Title:               meeting.Title,
		TranscriptAvailable: true,
	}, nil
}

// mirrorMeeting upserts the local row. The join key is (title, organization)
// because the local schema has no column for the external id; a fresh
// meeting_code is generated on every pass, matching the existing deployments.
func (s *Service) mirrorMeeting(ctx context.Context, meeting *SourceMeeting, organizationID string) (*models.Meeting, error) {
	existing, err := s.meetings.FindByTitleAndOrg(ctx, meeting.Title, organizationID)
	if err != nil {
		return nil, err
	}

	record := &models.Meeting{
		OrganizationID: organizationID,
		Title:          meeting.Title,
		MeetingCode:    "MEET_" + uuid.NewString()[:8],
		ScheduledAt:    time.Now(),
		Description:    meeting.Description,
	}
	if existing != nil {
		record.ID = existing.ID
		if err := s.meetings.UpdateHeader(ctx, record); err != nil {
			return nil, err
		}
		s.logger.Info("updated existing meeting from transcript source",
			zap.String("meeting_id", record.ID.String()))
		return record, nil
	}

	if err := s.meetings.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.Info("created meeting from transcript source",
		zap.String("meeting_id", record.ID.String()))
	return record, nil
}

// enqueueTrigger submits the content generation job. The organisation id in
// the payload comes from the external meeting header, not the request.
func (s *Service) enqueueTrigger(ctx context.Context, localID uuid.UUID, sourceOrgID string) {
	payload, err := json.Marshal(map[string]interface{}{
		"meeting_id":      localID,
		"organisation_id": sourceOrgID,
		"source":          "supabase",
	})
	if err != nil {
		s.logger.Error("failed to build trigger payload", zap.Error(err))
		return
	}
	err = s.jobs.EnqueueAutomationTrigger(ctx, queue.AutomationTriggerPayload{
		MeetingID: localID,
		URL:       s.triggerURL,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error("failed to enqueue automation trigger",
			zap.String("meeting_id", localID.String()), zap.Error(err))
	}
}
