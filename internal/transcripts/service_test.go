package transcripts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
)

type fakeSource struct {
	meetings map[string]*SourceMeeting
	minutes  map[string]*SourceMinutes
	err      error
}

func (f *fakeSource) FetchMeeting(_ context.Context, id string) (*SourceMeeting, error) {
	return f.meetings[id], f.err
}

func (f *fakeSource) FetchMinutes(_ context.Context, meetingID string) (*SourceMinutes, error) {
	return f.minutes[meetingID], f.err
}

type fakeMeetingStore struct {
	byKey   map[string]*models.Meeting
	created []*models.Meeting
	updated []*models.Meeting
}

func key(title, org string) string { return title + "|" + org }

func (f *fakeMeetingStore) Create(_ context.Context, m *models.Meeting) error {
	m.ID = uuid.New()
	if f.byKey == nil {
		f.byKey = make(map[string]*models.Meeting)
	}
	f.byKey[key(m.Title, m.OrganizationID)] = m
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMeetingStore) FindByTitleAndOrg(_ context.Context, title, organizationID string) (*models.Meeting, error) {
	return f.byKey[key(title, organizationID)], nil
}

func (f *fakeMeetingStore) UpdateHeader(_ context.Context, m *models.Meeting) error {
	f.byKey[key(m.Title, m.OrganizationID)] = m
	f.updated = append(f.updated, m)
	return nil
}

type fakeQueue struct {
	triggers []queue.AutomationTriggerPayload
}

func (f *fakeQueue) EnqueueAutomationTrigger(_ context.Context, p queue.AutomationTriggerPayload) error {
	f.triggers = append(f.triggers, p)
	return nil
}

func newTestService(source *fakeSource) (*Service, *fakeMeetingStore, *fakeQueue) {
	meetings := &fakeMeetingStore{}
	jobs := &fakeQueue{}
	return NewService(source, meetings, jobs, "https://hook.example.com/meeting", zap.NewNop()), meetings, jobs
}

func TestProcessRejectsMalformedID(t *testing.T) {
	svc, meetings, _ := newTestService(&fakeSource{})

	_, err := svc.Process(context.Background(), "not-a-uuid", "org-1")

	assert.ErrorIs(t, err, ErrInvalidMeetingID)
	assert.Empty(t, meetings.created)
}

func TestProcessUnknownExternalID(t *testing.T) {
	svc, _, _ := newTestService(&fakeSource{})

	_, err := svc.Process(context.Background(), "00000000-0000-0000-0000-000000000000", "org-1")

	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestProcessSourceFailureIsNotNotFound(t *testing.T) {
	svc, meetings, _ := newTestService(&fakeSource{err: assert.AnError})

	_, err := svc.Process(context.Background(), uuid.NewString(), "org-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrMeetingNotFound)
	assert.Empty(t, meetings.created)
}

func TestProcessMeetingWithoutTranscript(t *testing.T) {
	externalID := uuid.NewString()
	source := &fakeSource{
		meetings: map[string]*SourceMeeting{
			externalID: {ID: externalID, Title: "Board Sync"},
		},
		minutes: map[string]*SourceMinutes{
			externalID: {MeetingID: externalID, Transcript: ""},
		},
	}
	svc, _, _ := newTestService(source)

	_, err := svc.Process(context.Background(), externalID, "org-1")

	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestProcessCreatesLocalMirrorAndEnqueuesTrigger(t *testing.T) {
	externalID := uuid.NewString()
	source := &fakeSource{
		meetings: map[string]*SourceMeeting{
			externalID: {ID: externalID, Title: "Board Sync", OrganizationID: "src-org"},
		},
		minutes: map[string]*SourceMinutes{
			externalID: {MeetingID: externalID, Transcript: "full transcript", Summary: "short"},
		},
	}
	svc, meetings, jobs := newTestService(source)

	result, err := svc.Process(context.Background(), externalID, "org-1")
	require.NoError(t, err)

	assert.Equal(t, externalID, result.SupabaseMeetingID)
	assert.Equal(t, "Board Sync", result.Title)
	assert.True(t, result.TranscriptAvailable)

	require.Len(t, meetings.created, 1)
	m := meetings.created[0]
	assert.Equal(t, result.MeetingID, m.ID)
	assert.Equal(t, "org-1", m.OrganizationID)
	assert.True(t, len(m.MeetingCode) == len("MEET_")+8)

	require.Len(t, jobs.triggers, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(jobs.triggers[0].Payload, &body))
	assert.Equal(t, m.ID.String(), body["meeting_id"])
	assert.Equal(t, "src-org", body["organisation_id"])
	assert.Equal(t, "supabase", body["source"])
}

func TestProcessUpdatesExistingMirrorRow(t *testing.T) {
	externalID := uuid.NewString()
	source := &fakeSource{
		meetings: map[string]*SourceMeeting{
			externalID: {ID: externalID, Title: "Board Sync"},
		},
		minutes: map[string]*SourceMinutes{
			externalID: {MeetingID: externalID, Transcript: "full transcript"},
		},
	}
	svc, meetings, _ := newTestService(source)

	first, err := svc.Process(context.Background(), externalID, "org-1")
	require.NoError(t, err)

	second, err := svc.Process(context.Background(), externalID, "org-1")
	require.NoError(t, err)

	assert.Equal(t, first.MeetingID, second.MeetingID, "replay must reuse the existing local row")
	assert.Len(t, meetings.created, 1)
	require.Len(t, meetings.updated, 1)
	assert.NotEqual(t, meetings.created[0].MeetingCode, meetings.updated[0].MeetingCode,
		"meeting code is regenerated on update")
}
