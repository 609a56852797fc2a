// Package worker runs the background job loop: automation trigger dispatch
// and retention archiving of expired local videos.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/queue"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/storage"
)

// TriggerClient posts automation payloads.
type TriggerClient interface {
	Post(ctx context.Context, url string, payload []byte) error
}

// VideoStore clears local file references once a file leaves the disk.
type VideoStore interface {
	ClearLocalPath(ctx context.Context, path string) error
}

// FileStore enumerates and deletes local video files.
type FileStore interface {
	ListOlderThan(maxAge time.Duration) ([]storage.FileInfo, error)
	Delete(path string) error
}

// Processor consumes jobs from the queue.
type Processor struct {
	queue   *queue.Queue
	trigger TriggerClient
	archive *storage.S3
	videos  VideoStore
	files   FileStore
	logger  *zap.Logger
}

// NewProcessor creates a job processor. archive may be nil when no archive
// bucket is configured; archive jobs then fail and end up in the DLQ.
func NewProcessor(q *queue.Queue, trigger TriggerClient, archive *storage.S3, videos VideoStore, files FileStore, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, trigger: trigger, archive: archive, videos: videos, files: files, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeAutomationTrigger:
		return p.processTrigger(ctx, job)
	case queue.JobTypeVideoArchive:
		return p.processArchive(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processTrigger(ctx context.Context, job *queue.Job) error {
	var payload queue.AutomationTriggerPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.trigger.Post(ctx, payload.URL, payload.Payload); err != nil {
		return err
	}
	p.logger.Info("automation trigger dispatched",
		zap.String("job_id", job.ID),
		zap.String("meeting_id", payload.MeetingID.String()))
	return nil
}

func (p *Processor) processArchive(ctx context.Context, job *queue.Job) error {
	var payload queue.VideoArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if p.archive == nil {
		return fmt.Errorf("archive bucket not configured")
	}

	f, err := os.Open(payload.LocalPath)
	if err != nil {
		if os.IsNotExist(err) {
			p.logger.Info("archive source already gone", zap.String("path", payload.LocalPath))
			return nil
		}
		return fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat video: %w", err)
	}

	contentType := mime.TypeByExtension(storage.Extension(payload.Filename))
	if contentType == "" {
		contentType = "video/mp4"
	}
	key := storage.ArchiveKey(payload.Filename)
	url, err := p.archive.Upload(ctx, key, contentType, f, stat.Size())
	if err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}

	if err := p.videos.ClearLocalPath(ctx, payload.LocalPath); err != nil {
		p.logger.Error("failed to clear local path reference",
			zap.String("path", payload.LocalPath), zap.Error(err))
		return fmt.Errorf("clear local path: %w", err)
	}
	if err := p.files.Delete(payload.LocalPath); err != nil {
		return fmt.Errorf("delete local file: %w", err)
	}

	p.logger.Info("video archived",
		zap.String("job_id", job.ID),
		zap.String("s3_key", key),
		zap.String("url", url))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

// RetentionScanner periodically enqueues archive jobs for local videos older
// than the retention age.
type RetentionScanner struct {
	files    FileStore
	queue    *queue.Queue
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewRetentionScanner creates a retention scanner.
func NewRetentionScanner(files FileStore, q *queue.Queue, maxAge, interval time.Duration, logger *zap.Logger) *RetentionScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionScanner{files: files, queue: q, maxAge: maxAge, interval: interval, logger: logger}
}

// Run scans once at startup and then on every tick until ctx is done.
func (s *RetentionScanner) Run(ctx context.Context) {
	s.scan(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention scanner stopping")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *RetentionScanner) scan(ctx context.Context) {
	expired, err := s.files.ListOlderThan(s.maxAge)
	if err != nil {
		s.logger.Error("retention scan failed", zap.Error(err))
		return
	}
	for _, f := range expired {
		err := s.queue.EnqueueVideoArchive(ctx, queue.VideoArchivePayload{
			LocalPath: f.Path,
			Filename:  f.Filename,
		})
		if err != nil {
			s.logger.Error("failed to enqueue archive job",
				zap.String("path", f.Path), zap.Error(err))
			continue
		}
		s.logger.Info("expired video queued for archive",
			zap.String("path", f.Path),
			zap.Int64("size", f.Size),
			zap.Time("mod_time", f.ModTime))
	}
	if len(expired) > 0 {
		s.logger.Info("retention scan complete", zap.Int("queued", len(expired)))
	}
}
