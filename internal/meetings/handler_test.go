package meetings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/transcripts"
)

type fakeStore struct {
	meetings []models.Meeting
	orgNames map[string]string
	fail     bool
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	for i := range f.meetings {
		if f.meetings[i].ID == id {
			return &f.meetings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByOrganization(_ context.Context, organizationID string, limit, offset int) ([]models.Meeting, error) {
	if f.fail {
		return nil, assert.AnError
	}
	var matched []models.Meeting
	for _, m := range f.meetings {
		if m.OrganizationID == organizationID {
			matched = append(matched, m)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeStore) CountByOrganization(_ context.Context, organizationID string) (int, error) {
	if f.fail {
		return 0, assert.AnError
	}
	n := 0
	for _, m := range f.meetings {
		if m.OrganizationID == organizationID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DistinctOrganizationIDs(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, m := range f.meetings {
		if m.OrganizationID != "" && !seen[m.OrganizationID] {
			seen[m.OrganizationID] = true
			ids = append(ids, m.OrganizationID)
		}
	}
	return ids, nil
}

func (f *fakeStore) OrganizationName(_ context.Context, id string) (string, error) {
	return f.orgNames[id], nil
}

type emptyLister struct{}

func (emptyLister) ListByMeeting(context.Context, uuid.UUID) ([]models.BlogPost, error) {
	return nil, nil
}

type emptyLogLister struct{}

func (emptyLogLister) ListByMeeting(context.Context, uuid.UUID) ([]models.ProcessingLog, error) {
	return nil, nil
}

type disabledSource struct{}

func (disabledSource) Enabled() bool { return false }
func (disabledSource) ListMinutesWithTranscripts(context.Context) ([]transcripts.SourceMinutes, error) {
	return nil, nil
}
func (disabledSource) ListMeetingsByIDs(context.Context, []string, string, int, int) ([]transcripts.SourceMeeting, error) {
	return nil, nil
}
func (disabledSource) CountMeetingsByIDs(context.Context, []string, string) (int, error) {
	return 0, nil
}

func newTestRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(store, emptyLister{}, emptyLogLister{}, disabledSource{}, zap.NewNop())
	h.RegisterRoutes(r)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func seedMeetings(org string, n int) []models.Meeting {
	base := time.Now()
	meetings := make([]models.Meeting, n)
	for i := range meetings {
		meetings[i] = models.Meeting{
			ID:             uuid.New(),
			OrganizationID: org,
			Title:          "Meeting",
			CreatedAt:      base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return meetings
}

func TestListPaginationDisjointSlices(t *testing.T) {
	store := &fakeStore{meetings: seedMeetings("org-1", 15)}
	r := newTestRouter(store)

	type page struct {
		Meetings []models.Meeting `json:"meetings"`
		Total    int              `json:"total"`
	}

	var first, second page
	w := doGet(r, "/api/meetings?organization_id=org-1&limit=10&offset=0")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doGet(r, "/api/meetings?organization_id=org-1&limit=10&offset=10")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	assert.Equal(t, 15, first.Total)
	assert.Len(t, first.Meetings, 10)
	assert.Len(t, second.Meetings, 5)

	seen := map[uuid.UUID]bool{}
	for _, m := range append(first.Meetings, second.Meetings...) {
		assert.False(t, seen[m.ID], "pages must be disjoint")
		seen[m.ID] = true
	}
	assert.Len(t, seen, first.Total)
}

func TestListFailSoft(t *testing.T) {
	store := &fakeStore{fail: true}
	r := newTestRouter(store)

	w := doGet(r, "/api/meetings?organization_id=org-1")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["meetings"])
	assert.Equal(t, float64(0), body["total"])
}

func TestGetMeetingNotFound(t *testing.T) {
	r := newTestRouter(&fakeStore{})

	w := doGet(r, "/api/meetings/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Meeting not found", body["error"])
}

func TestGetMeetingWithChildren(t *testing.T) {
	m := models.Meeting{ID: uuid.New(), OrganizationID: "org-1", Title: "Demo"}
	r := newTestRouter(&fakeStore{meetings: []models.Meeting{m}})

	w := doGet(r, "/api/meetings/"+m.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "meeting")
	assert.Contains(t, body, "blog_posts")
	assert.Contains(t, body, "processing_logs")
}

func TestProcessingStatus(t *testing.T) {
	m := models.Meeting{
		ID:                  uuid.New(),
		OrganizationID:      "org-1",
		Title:               "Demo",
		TranscriptionStatus: models.TranscriptionStatusPending,
	}
	r := newTestRouter(&fakeStore{meetings: []models.Meeting{m}})

	w := doGet(r, "/api/upload/status/"+m.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, m.ID.String(), body["meeting_id"])
	assert.Equal(t, "pending", body["transcription_status"])
}

func TestOrganizationOptionsSortedByLabel(t *testing.T) {
	store := &fakeStore{
		meetings: []models.Meeting{
			{ID: uuid.New(), OrganizationID: "org-zeta"},
			{ID: uuid.New(), OrganizationID: "org-alpha"},
			{ID: uuid.New(), OrganizationID: "org-mid"},
		},
		orgNames: map[string]string{
			"org-zeta":  "Zebra Corp",
			"org-alpha": "Acme Inc",
		},
	}
	r := newTestRouter(store)

	w := doGet(r, "/api/organizations/options")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Options []Option `json:"options"`
		Total   int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 3, body.Total)
	assert.Equal(t, "Acme Inc", body.Options[0].Label)
	assert.Equal(t, "Organization org-mid...", body.Options[1].Label)
	assert.Equal(t, "Zebra Corp", body.Options[2].Label)
}
