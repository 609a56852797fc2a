package videos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
)

// Repository handles video file persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a videos repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const videoColumns = `id, meeting_id, original_filename, local_file_path, remote_url, remote_id, uploaded_at, created_at`

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.MeetingID, &v.OriginalFilename, &v.LocalFilePath,
		&v.RemoteURL, &v.RemoteID, &v.UploadedAt, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new video row. RemoteURL starts empty and is backfilled
// once the remote upload succeeds.
func (r *Repository) Create(ctx context.Context, v *models.Video) error {
	const q = `INSERT INTO meeting_videos (id, meeting_id, original_filename, local_file_path, remote_url, remote_id, uploaded_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NOW())
		RETURNING id, uploaded_at, created_at`
	return r.pool.QueryRow(ctx, q, v.MeetingID, v.OriginalFilename, v.LocalFilePath, v.RemoteURL, v.RemoteID).
		Scan(&v.ID, &v.UploadedAt, &v.CreatedAt)
}

// GetByID returns a video by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	const q = `SELECT ` + videoColumns + ` FROM meeting_videos WHERE id = $1`
	v, err := scanVideo(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// ListByMeeting returns all videos for a meeting.
func (r *Repository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]models.Video, error) {
	const q = `SELECT ` + videoColumns + ` FROM meeting_videos WHERE meeting_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// SetRemote backfills the remote host URL and identifier for the meeting's
// video row after a successful upload.
func (r *Repository) SetRemote(ctx context.Context, meetingID uuid.UUID, remoteURL, remoteID string) error {
	const q = `UPDATE meeting_videos SET remote_url = $1, remote_id = $2 WHERE meeting_id = $3`
	tag, err := r.pool.Exec(ctx, q, remoteURL, remoteID, meetingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no video for meeting %s", meetingID)
	}
	return nil
}

// ClearLocalPath empties local_file_path after the file is archived or removed.
func (r *Repository) ClearLocalPath(ctx context.Context, path string) error {
	const q = `UPDATE meeting_videos SET local_file_path = '' WHERE local_file_path = $1`
	_, err := r.pool.Exec(ctx, q, path)
	return err
}
