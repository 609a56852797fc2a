package meetings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
)

// Repository handles meeting persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meetings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const meetingColumns = `id, organization_id, title, meeting_code, scheduled_at, description,
	transcript, summary, transcription_status, created_at, updated_at`

func scanMeeting(row pgx.Row) (*models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(&m.ID, &m.OrganizationID, &m.Title, &m.MeetingCode, &m.ScheduledAt, &m.Description,
		&m.Transcript, &m.Summary, &m.TranscriptionStatus, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new meeting.
func (r *Repository) Create(ctx context.Context, m *models.Meeting) error {
	const q = `INSERT INTO meetings (id, organization_id, title, meeting_code, scheduled_at, description, transcription_status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if m.TranscriptionStatus == "" {
		m.TranscriptionStatus = models.TranscriptionStatusPending
	}
	return r.pool.QueryRow(ctx, q, m.OrganizationID, m.Title, m.MeetingCode, m.ScheduledAt, m.Description, m.TranscriptionStatus).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a meeting by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	m, err := scanMeeting(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// FindByTitleAndOrg returns the first meeting matching (title, organization_id),
// or nil when absent. This is the transcript-flow upsert key.
func (r *Repository) FindByTitleAndOrg(ctx context.Context, title, organizationID string) (*models.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings
		WHERE title = $1 AND organization_id = $2
		ORDER BY created_at ASC LIMIT 1`
	m, err := scanMeeting(r.pool.QueryRow(ctx, q, title, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListByOrganization returns meetings for an organization, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]models.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// CountByOrganization returns the total number of meetings for an organization.
func (r *Repository) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	const q = `SELECT COUNT(*) FROM meetings WHERE organization_id = $1`
	var n int
	if err := r.pool.QueryRow(ctx, q, organizationID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetTranscript overwrites transcript and summary and marks transcription
// completed. Updating a meeting that does not exist is an error.
func (r *Repository) SetTranscript(ctx context.Context, id uuid.UUID, transcript, summary string) error {
	const q = `UPDATE meetings
		SET transcript = $1, summary = $2, transcription_status = $3, updated_at = NOW()
		WHERE id = $4`
	tag, err := r.pool.Exec(ctx, q, transcript, summary, models.TranscriptionStatusCompleted, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meeting %s not found", id)
	}
	return nil
}

// UpdateHeader refreshes the transcript-flow fields of an existing meeting
// (title, code, schedule, description).
func (r *Repository) UpdateHeader(ctx context.Context, m *models.Meeting) error {
	const q = `UPDATE meetings
		SET organization_id = $1, title = $2, meeting_code = $3, scheduled_at = $4, description = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, m.OrganizationID, m.Title, m.MeetingCode, m.ScheduledAt, m.Description, m.ID).
		Scan(&m.UpdatedAt)
}

// DistinctOrganizationIDs returns the distinct non-empty organization ids
// present in the meetings table.
func (r *Repository) DistinctOrganizationIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT organization_id FROM meetings
		WHERE organization_id <> '' ORDER BY organization_id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OrganizationName returns the display name for an organization id, or ""
// when unknown.
func (r *Repository) OrganizationName(ctx context.Context, id string) (string, error) {
	const q = `SELECT name FROM organizations WHERE id = $1`
	var name string
	if err := r.pool.QueryRow(ctx, q, id).Scan(&name); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return name, nil
}
