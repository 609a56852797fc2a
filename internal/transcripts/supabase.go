package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SourceMeeting is a meeting header row from the external Supabase store.
type SourceMeeting struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	OrganizationID string `json:"organization_id"`
	CreatedAt      string `json:"created_at"`
}

// SourceMinutes is a meeting_minutes row from the external Supabase store.
type SourceMinutes struct {
	ID         string `json:"id"`
	MeetingID  string `json:"meeting_id"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	CreatedAt  string `json:"created_at"`
}

// SupabaseClient reads the external meetings and meeting_minutes tables over
// the PostgREST API.
type SupabaseClient struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *zap.Logger
}

// NewSupabaseClient creates a read-only Supabase client. baseURL is the
// project URL without a trailing slash.
func NewSupabaseClient(baseURL, key string, logger *zap.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Enabled reports whether the client is configured.
func (c *SupabaseClient) Enabled() bool {
	return c.baseURL != "" && c.key != ""
}

// FetchMeeting returns the meeting header for an external id, or nil when the
// row is absent.
func (c *SupabaseClient) FetchMeeting(ctx context.Context, id string) (*SourceMeeting, error) {
	var rows []SourceMeeting
	query := url.Values{"id": {"eq." + id}, "select": {"*"}}
	if err := c.get(ctx, "meetings", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FetchMinutes returns the minutes row for an external meeting id, or nil
// when the row is absent.
func (c *SupabaseClient) FetchMinutes(ctx context.Context, meetingID string) (*SourceMinutes, error) {
	var rows []SourceMinutes
	query := url.Values{"meeting_id": {"eq." + meetingID}, "select": {"*"}}
	if err := c.get(ctx, "meeting_minutes", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListMinutesWithTranscripts returns all minutes rows with a non-empty
// transcript, newest first.
func (c *SupabaseClient) ListMinutesWithTranscripts(ctx context.Context) ([]SourceMinutes, error) {
	var rows []SourceMinutes
	query := url.Values{
		"select":     {"id,meeting_id,transcript,summary,created_at"},
		"transcript": {"not.is.null", "neq."},
		"order":      {"created_at.desc"},
	}
	if err := c.get(ctx, "meeting_minutes", query, &rows); err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if r.Transcript != "" && r.MeetingID != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListMeetingsByIDs returns meeting headers for the given external ids,
// newest first, optionally filtered by organization and paginated.
func (c *SupabaseClient) ListMeetingsByIDs(ctx context.Context, ids []string, organizationID string, limit, offset int) ([]SourceMeeting, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := url.Values{
		"select": {"id,title,description,organization_id,created_at"},
		"id":     {"in.(" + strings.Join(ids, ",") + ")"},
		"order":  {"created_at.desc"},
	}
	if organizationID != "" {
		query.Set("organization_id", "eq."+organizationID)
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
		query.Set("offset", fmt.Sprint(offset))
	}
	var rows []SourceMeeting
	if err := c.get(ctx, "meetings", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountMeetingsByIDs counts meeting headers matching the id set and optional
// organization filter.
func (c *SupabaseClient) CountMeetingsByIDs(ctx context.Context, ids []string, organizationID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := url.Values{
		"select": {"id"},
		"id":     {"in.(" + strings.Join(ids, ",") + ")"},
	}
	if organizationID != "" {
		query.Set("organization_id", "eq."+organizationID)
	}
	var rows []SourceMeeting
	if err := c.get(ctx, "meetings", query, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *SupabaseClient) get(ctx context.Context, table string, query url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase %s request: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("supabase API error",
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("supabase %s returned %d", table, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
