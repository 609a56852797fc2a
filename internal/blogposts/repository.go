package blogposts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
)

// Repository handles blog post and poster persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a blog posts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const blogColumns = `id, meeting_id, title, content, summary, facebook_post_id, facebook_post_url, created_at`

func scanBlogPost(row pgx.Row) (*models.BlogPost, error) {
	var b models.BlogPost
	err := row.Scan(&b.ID, &b.MeetingID, &b.Title, &b.Content, &b.Summary,
		&b.FacebookPostID, &b.FacebookPostURL, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a blog post. When b.ID is set (the automation engine supplied
// a blog_id) it is used as the primary key, otherwise one is generated.
func (r *Repository) Create(ctx context.Context, b *models.BlogPost) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.ID == uuid.Nil {
		const q = `INSERT INTO blog_posts (id, meeting_id, title, content, summary, created_at)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
			RETURNING id`
		return r.pool.QueryRow(ctx, q, b.MeetingID, b.Title, b.Content, b.Summary, b.CreatedAt).Scan(&b.ID)
	}
	const q = `INSERT INTO blog_posts (id, meeting_id, title, content, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, b.ID, b.MeetingID, b.Title, b.Content, b.Summary, b.CreatedAt)
	return err
}

// GetByID returns a blog post by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	const q = `SELECT ` + blogColumns + ` FROM blog_posts WHERE id = $1`
	b, err := scanBlogPost(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// ListByMeeting returns all blog posts for a meeting.
func (r *Repository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]models.BlogPost, error) {
	const q = `SELECT ` + blogColumns + ` FROM blog_posts WHERE meeting_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.BlogPost
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

// SetFacebookPost records the Facebook post id and URL on a blog post.
// Updating a blog post that does not exist is an error, not a silent no-op.
func (r *Repository) SetFacebookPost(ctx context.Context, id uuid.UUID, postID, postURL string) error {
	const q = `UPDATE blog_posts SET facebook_post_id = $1, facebook_post_url = $2 WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, postID, postURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("blog post %s not found", id)
	}
	return nil
}

// CreatePoster inserts a generated image row for a blog post.
func (r *Repository) CreatePoster(ctx context.Context, p *models.Poster) error {
	const q = `INSERT INTO posters (id, meeting_id, blog_post_id, image_url, generation_prompt, image_type)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	if p.ImageType == "" {
		p.ImageType = "poster"
	}
	return r.pool.QueryRow(ctx, q, p.MeetingID, p.BlogPostID, p.ImageURL, p.GenerationPrompt, p.ImageType).
		Scan(&p.ID, &p.CreatedAt)
}

// MarkPosterPosted flags the poster(s) for a blog post matching imageURL as
// posted to Facebook.
func (r *Repository) MarkPosterPosted(ctx context.Context, blogPostID uuid.UUID, imageURL string) error {
	const q = `UPDATE posters SET posted_to_facebook = TRUE WHERE blog_post_id = $1 AND image_url = $2`
	_, err := r.pool.Exec(ctx, q, blogPostID, imageURL)
	return err
}
