package videos

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
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/probe"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/storage"
)

type fakeStore struct {
	videos map[uuid.UUID]*models.Video
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	return f.videos[id], nil
}

type fakeFiles struct {
	infos map[string]*storage.FileInfo
}

func (f *fakeFiles) Exists(path string) bool {
	_, ok := f.infos[path]
	return ok
}

func (f *fakeFiles) Info(path string) (*storage.FileInfo, error) {
	fi, ok := f.infos[path]
	if !ok {
		return nil, assert.AnError
	}
	return fi, nil
}

type noopInspector struct{}

func (noopInspector) Inspect(_ context.Context, _ string) *probe.Info { return nil }

func getVideo(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestInfoIncludesFileMetadata(t *testing.T) {
	videoID := uuid.New()
	store := &fakeStore{videos: map[uuid.UUID]*models.Video{
		videoID: {ID: videoID, MeetingID: uuid.New(), LocalFilePath: "/videos/clip.mp4"},
	}}
	files := &fakeFiles{infos: map[string]*storage.FileInfo{
		"/videos/clip.mp4": {Path: "/videos/clip.mp4", Filename: "clip.mp4", Size: 2048, ModTime: time.Now()},
	}}
	h := NewHandler(store, files, noopInspector{}, zap.NewNop())

	w := getVideo(h, "/api/videos/"+videoID.String()+"/info")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["file_exists"])
	assert.Equal(t, float64(2048), body["file_size"])
}

func TestInfoMissingFile(t *testing.T) {
	videoID := uuid.New()
	store := &fakeStore{videos: map[uuid.UUID]*models.Video{
		videoID: {ID: videoID, MeetingID: uuid.New(), LocalFilePath: "/videos/gone.mp4"},
	}}
	h := NewHandler(store, &fakeFiles{}, noopInspector{}, zap.NewNop())

	w := getVideo(h, "/api/videos/"+videoID.String()+"/info")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["file_exists"])
	assert.NotContains(t, body, "file_size")
}

func TestFileNotOnDisk(t *testing.T) {
	videoID := uuid.New()
	store := &fakeStore{videos: map[uuid.UUID]*models.Video{
		videoID: {ID: videoID, MeetingID: uuid.New(), LocalFilePath: "/videos/gone.mp4"},
	}}
	h := NewHandler(store, &fakeFiles{}, noopInspector{}, zap.NewNop())

	w := getVideo(h, "/api/videos/"+videoID.String()+"/file")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Video file not found", resp["error"])
}

func TestLookupRejectsMalformedID(t *testing.T) {
	h := NewHandler(&fakeStore{}, &fakeFiles{}, noopInspector{}, zap.NewNop())

	w := getVideo(h, "/api/videos/not-a-uuid/info")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
