// Package automation posts trigger payloads to the external workflow engine.
package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout matches the workflow engine's longest scenario run.
const DefaultTimeout = 300 * time.Second

// Trigger posts JSON payloads to automation webhook URLs.
type Trigger struct {
	http   *http.Client
	logger *zap.Logger
}

// NewTrigger creates a trigger client. A non-positive timeout falls back to
// DefaultTimeout.
func NewTrigger(timeout time.Duration, logger *zap.Logger) *Trigger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Trigger{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Post sends the payload to url. A non-200 response is an error so the queue
// can retry the job.
func (t *Trigger) Post(ctx context.Context, url string, payload []byte) error {
	if url == "" {
		return errors.New("automation webhook URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("automation webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Warn("automation webhook returned non-200",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("automation webhook returned %d", resp.StatusCode)
	}

	t.logger.Info("automation webhook triggered", zap.String("url", url))
	return nil
}
