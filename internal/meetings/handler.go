package meetings

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/transcripts"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
)

// Store is the slice of the repository the read endpoints use.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Meeting, error)
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
	DistinctOrganizationIDs(ctx context.Context) ([]string, error)
	OrganizationName(ctx context.Context, id string) (string, error)
}

// BlogLister lists blog posts for a meeting.
type BlogLister interface {
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]models.BlogPost, error)
}

// LogLister lists processing log entries for a meeting.
type LogLister interface {
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]models.ProcessingLog, error)
}

// TranscriptSource reads the external store backing the transcript dropdowns.
type TranscriptSource interface {
	Enabled() bool
	ListMinutesWithTranscripts(ctx context.Context) ([]transcripts.SourceMinutes, error)
	ListMeetingsByIDs(ctx context.Context, ids []string, organizationID string, limit, offset int) ([]transcripts.SourceMeeting, error)
	CountMeetingsByIDs(ctx context.Context, ids []string, organizationID string) (int, error)
}

// Option is one dropdown entry.
type Option struct {
	Value          string `json:"value"`
	Label          string `json:"label"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Handler serves the read-only meeting projections.
type Handler struct {
	store  Store
	blogs  BlogLister
	logs   LogLister
	source TranscriptSource
	logger *zap.Logger
}

// NewHandler creates a meetings query handler.
func NewHandler(store Store, blogs BlogLister, logs LogLister, source TranscriptSource, logger *zap.Logger) *Handler {
	return &Handler{store: store, blogs: blogs, logs: logs, source: source, logger: logger}
}

// RegisterRoutes mounts the read endpoints.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/meetings", h.List)
	r.GET("/api/meetings/with-transcripts", h.ListWithTranscripts)
	r.GET("/api/meetings/options", h.MeetingOptions)
	r.GET("/api/meetings/:id", h.Get)
	r.GET("/api/upload/status/:id", h.ProcessingStatus)
	r.GET("/api/organizations/options", h.OrganizationOptions)
}

// List returns one page of meetings for an organization. Read failures yield
// an empty page, not an error; list views are fail-soft.
func (h *Handler) List(c *gin.Context) {
	organizationID := c.Query("organization_id")
	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)

	meetings, err := h.store.ListByOrganization(c.Request.Context(), organizationID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list meetings",
			zap.String("organization_id", organizationID), zap.Error(err))
		meetings = nil
	}
	total := 0
	if err == nil {
		if total, err = h.store.CountByOrganization(c.Request.Context(), organizationID); err != nil {
			h.logger.Error("failed to count meetings",
				zap.String("organization_id", organizationID), zap.Error(err))
			total = 0
		}
	}
	if meetings == nil {
		meetings = []models.Meeting{}
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": meetings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// Get returns a meeting with its blog posts and processing logs.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid meeting ID format")
		return
	}

	meeting, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get meeting", zap.String("meeting_id", id.String()), zap.Error(err))
		response.Internal(c, "Failed to get meeting")
		return
	}
	if meeting == nil {
		response.NotFound(c, "Meeting not found")
		return
	}

	blogPosts, err := h.blogs.ListByMeeting(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to list blog posts", zap.String("meeting_id", id.String()), zap.Error(err))
		blogPosts = nil
	}
	logs, err := h.logs.ListByMeeting(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to list processing logs", zap.String("meeting_id", id.String()), zap.Error(err))
		logs = nil
	}
	if blogPosts == nil {
		blogPosts = []models.BlogPost{}
	}
	if logs == nil {
		logs = []models.ProcessingLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting":         meeting,
		"blog_posts":      blogPosts,
		"processing_logs": logs,
	})
}

// ProcessingStatus returns the transcription progress for a meeting.
func (h *Handler) ProcessingStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid meeting ID format")
		return
	}

	meeting, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get processing status", zap.String("meeting_id", id.String()), zap.Error(err))
		response.Internal(c, "Failed to get processing status")
		return
	}
	if meeting == nil {
		response.NotFound(c, "Meeting not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting_id":           meeting.ID,
		"title":                meeting.Title,
		"transcription_status": meeting.TranscriptionStatus,
		"created_at":           meeting.CreatedAt,
	})
}

// ListWithTranscripts returns externally hosted meetings that have a
// transcript, joined with their transcript text. Fail-soft.
func (h *Handler) ListWithTranscripts(c *gin.Context) {
	organizationID := c.Query("organization_id")
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	meetings, total := h.transcribedMeetings(c.Request.Context(), organizationID, limit, offset)

	items := make([]gin.H, 0, len(meetings.headers))
	for _, m := range meetings.headers {
		minutes, ok := meetings.minutesByID[m.ID]
		if !ok {
			continue
		}
		items = append(items, gin.H{
			"id":                    m.ID,
			"title":                 m.Title,
			"created_at":            m.CreatedAt,
			"organization_id":       m.OrganizationID,
			"transcript":            minutes.Transcript,
			"summary":               minutes.Summary,
			"transcript_created_at": minutes.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": items,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// MeetingOptions returns {value, label} pairs for transcribed meetings.
func (h *Handler) MeetingOptions(c *gin.Context) {
	organizationID := c.Query("organization_id")
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	meetings, _ := h.transcribedMeetings(c.Request.Context(), organizationID, limit, offset)

	options := make([]Option, 0, len(meetings.headers))
	for _, m := range meetings.headers {
		label := m.Title
		if label == "" {
			label = "Meeting " + truncateID(m.ID)
		}
		options = append(options, Option{Value: m.ID, Label: label, OrganizationID: m.OrganizationID})
	}

	c.JSON(http.StatusOK, gin.H{
		"options": options,
		"total":   len(options),
		"limit":   limit,
		"offset":  offset,
	})
}

// OrganizationOptions returns {value, label} pairs for every organization
// seen in the local meetings table, sorted by label.
func (h *Handler) OrganizationOptions(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := h.store.DistinctOrganizationIDs(ctx)
	if err != nil {
		h.logger.Error("failed to list organizations", zap.Error(err))
		ids = nil
	}

	options := make([]Option, 0, len(ids))
	for _, id := range ids {
		name, err := h.store.OrganizationName(ctx, id)
		if err != nil {
			h.logger.Error("failed to look up organization name",
				zap.String("organization_id", id), zap.Error(err))
		}
		label := name
		if label == "" {
			label = "Organization " + truncateID(id) + "..."
		}
		options = append(options, Option{Value: id, Label: label})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Label < options[j].Label })

	c.JSON(http.StatusOK, gin.H{
		"options": options,
		"total":   len(options),
	})
}

type transcribedSet struct {
	headers     []transcripts.SourceMeeting
	minutesByID map[string]transcripts.SourceMinutes
}

// transcribedMeetings resolves the external transcript join: minutes rows
// with non-empty transcripts, deduplicated by meeting id, then the matching
// meeting headers. Every failure degrades to an empty set.
func (h *Handler) transcribedMeetings(ctx context.Context, organizationID string, limit, offset int) (transcribedSet, int) {
	empty := transcribedSet{minutesByID: map[string]transcripts.SourceMinutes{}}
	if h.source == nil || !h.source.Enabled() {
		return empty, 0
	}

	minutes, err := h.source.ListMinutesWithTranscripts(ctx)
	if err != nil {
		h.logger.Error("failed to list transcripts", zap.Error(err))
		return empty, 0
	}
	if len(minutes) == 0 {
		return empty, 0
	}

	byID := make(map[string]transcripts.SourceMinutes, len(minutes))
	ids := make([]string, 0, len(minutes))
	for _, m := range minutes {
		if _, seen := byID[m.MeetingID]; seen {
			continue
		}
		byID[m.MeetingID] = m
		ids = append(ids, m.MeetingID)
	}

	headers, err := h.source.ListMeetingsByIDs(ctx, ids, organizationID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list transcribed meetings", zap.Error(err))
		return empty, 0
	}
	total, err := h.source.CountMeetingsByIDs(ctx, ids, organizationID)
	if err != nil {
		h.logger.Error("failed to count transcribed meetings", zap.Error(err))
		total = 0
	}
	return transcribedSet{headers: headers, minutesByID: byID}, total
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
