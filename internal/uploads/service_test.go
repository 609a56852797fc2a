package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/probe"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/cloudinary"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/storage"
)

type fakeMeetingStore struct {
	meetings []*models.Meeting
}

func (f *fakeMeetingStore) Create(_ context.Context, m *models.Meeting) error {
	m.ID = uuid.New()
	f.meetings = append(f.meetings, m)
	return nil
}

type fakeVideoStore struct {
	videos    []*models.Video
	remoteURL string
	remoteID  string
}

func (f *fakeVideoStore) Create(_ context.Context, v *models.Video) error {
	v.ID = uuid.New()
	f.videos = append(f.videos, v)
	return nil
}

func (f *fakeVideoStore) SetRemote(_ context.Context, _ uuid.UUID, remoteURL, remoteID string) error {
	f.remoteURL = remoteURL
	f.remoteID = remoteID
	return nil
}

type fakeHost struct {
	enabled bool
	result  *cloudinary.UploadResult
	err     error
	calls   int
}

func (f *fakeHost) Enabled() bool { return f.enabled }

func (f *fakeHost) UploadVideo(_ context.Context, _, publicID string) (*cloudinary.UploadResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.PublicID = publicID
	return &r, nil
}

type nopProber struct{}

func (nopProber) Duration(context.Context, string) *int                { return nil }
func (nopProber) Resolution(context.Context, string) *probe.Resolution { return nil }

type fakeQueue struct {
	triggers []queue.AutomationTriggerPayload
}

func (f *fakeQueue) EnqueueAutomationTrigger(_ context.Context, p queue.AutomationTriggerPayload) error {
	f.triggers = append(f.triggers, p)
	return nil
}

func newTestService(t *testing.T, host *fakeHost, maxBytes int64) (*Service, *fakeMeetingStore, *fakeVideoStore, *fakeQueue, *storage.Local) {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	meetings := &fakeMeetingStore{}
	videos := &fakeVideoStore{}
	jobs := &fakeQueue{}
	svc := NewService(meetings, videos, files, host, nopProber{}, jobs,
		"https://hook.example.com/upload", "http://localhost:3000", maxBytes, zap.NewNop())
	return svc, meetings, videos, jobs, files
}

func TestUploadHappyPath(t *testing.T) {
	host := &fakeHost{
		enabled: true,
		result: &cloudinary.UploadResult{
			SecureURL: "https://res.cloudinary.com/demo/video/upload/v1/demo.mp4",
		},
	}
	svc, meetings, videos, jobs, _ := newTestService(t, host, 500*1024*1024)

	payload := bytes.Repeat([]byte("x"), 10*1024*1024)
	result, err := svc.Upload(context.Background(), Input{
		File:           bytes.NewReader(payload),
		Filename:       "demo.mp4",
		MeetingTitle:   "Demo",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.MeetingID)
	assert.Equal(t, "Demo", result.Title)

	require.Len(t, meetings.meetings, 1)
	m := meetings.meetings[0]
	assert.Equal(t, result.MeetingID, m.ID)
	assert.Equal(t, "org-1", m.OrganizationID)
	assert.True(t, len(m.MeetingCode) == len("MEET_")+8)

	require.Len(t, videos.videos, 1)
	v := videos.videos[0]
	assert.Equal(t, m.ID, v.MeetingID)
	assert.Equal(t, "demo.mp4", v.OriginalFilename)
	assert.Equal(t, host.result.SecureURL, videos.remoteURL)

	require.Len(t, jobs.triggers, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(jobs.triggers[0].Payload, &body))
	assert.Equal(t, m.ID.String(), body["meeting_id"])
	assert.Equal(t, host.result.SecureURL, body["video_url"])
	assert.Equal(t, "Demo", body["meeting_title"])
	assert.Equal(t, "org-1", body["organization_id"])
}

func TestUploadDefaultsTitleAndOrganization(t *testing.T) {
	svc, meetings, _, _, _ := newTestService(t, &fakeHost{}, 500*1024*1024)

	result, err := svc.Upload(context.Background(), Input{
		File:     bytes.NewReader([]byte("content")),
		Filename: "clip.webm",
	})
	require.NoError(t, err)

	assert.Equal(t, "Untitled Meeting", result.Title)
	assert.Equal(t, "default", meetings.meetings[0].OrganizationID)
}

func TestUploadRejectsInvalidExtension(t *testing.T) {
	svc, meetings, _, _, files := newTestService(t, &fakeHost{}, 500*1024*1024)

	_, err := svc.Upload(context.Background(), Input{
		File:     bytes.NewReader([]byte("not a video")),
		Filename: "notes.txt",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid file type. Allowed: mp4, avi, mov, mkv, wmv, flv, webm", verr.Message)
	assert.Empty(t, meetings.meetings)

	stored, err := files.ListOlderThan(0)
	require.NoError(t, err)
	assert.Empty(t, stored, "no file may be written for a rejected upload")
}

func TestUploadRejectsOversizeFileAndDeletesIt(t *testing.T) {
	svc, meetings, _, _, files := newTestService(t, &fakeHost{}, 1024)

	_, err := svc.Upload(context.Background(), Input{
		File:     bytes.NewReader(bytes.Repeat([]byte("y"), 4096)),
		Filename: "big.mp4",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "File too large")
	assert.Empty(t, meetings.meetings)

	stored, err := files.ListOlderThan(0)
	require.NoError(t, err)
	assert.Empty(t, stored, "oversize upload must be removed from disk")
}

func TestUploadFallsBackToLocalURLWhenHostFails(t *testing.T) {
	host := &fakeHost{enabled: true, err: assert.AnError}
	svc, _, videos, jobs, _ := newTestService(t, host, 500*1024*1024)

	_, err := svc.Upload(context.Background(), Input{
		File:     bytes.NewReader([]byte("content")),
		Filename: "clip.mov",
	})
	require.NoError(t, err, "media host failure must not fail the upload")

	assert.Equal(t, 1, host.calls)
	assert.Empty(t, videos.remoteURL)

	require.Len(t, jobs.triggers, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(jobs.triggers[0].Payload, &body))
	videoID := videos.videos[0].ID.String()
	assert.Equal(t, "http://localhost:3000/api/videos/"+videoID+"/file", body["video_url"])
}
