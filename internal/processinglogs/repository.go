package processinglogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
)

// Repository handles the append-only processing log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a processing logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append records one processing event for a meeting.
func (r *Repository) Append(ctx context.Context, entry *models.ProcessingLog) error {
	const q = `INSERT INTO processing_logs (id, meeting_id, step, status, details)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, entry.MeetingID, entry.Step, entry.Status, entry.Details).
		Scan(&entry.ID, &entry.CreatedAt)
}

// ListByMeeting returns all processing log entries for a meeting, newest first.
func (r *Repository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]models.ProcessingLog, error) {
	const q = `SELECT id, meeting_id, step, status, details, created_at
		FROM processing_logs WHERE meeting_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ProcessingLog
	for rows.Next() {
		var l models.ProcessingLog
		if err := rows.Scan(&l.ID, &l.MeetingID, &l.Step, &l.Status, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
