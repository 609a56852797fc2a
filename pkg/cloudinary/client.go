// Package cloudinary is a minimal client for the Cloudinary upload API,
// covering signed video upload, deletion and metadata fetch.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiBase = "https://api.cloudinary.com/v1_1"

// Config holds Cloudinary account credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// UploadResult is the subset of the upload response the service uses.
type UploadResult struct {
	PublicID  string  `json:"public_id"`
	SecureURL string  `json:"secure_url"`
	URL       string  `json:"url"`
	Bytes     int64   `json:"bytes"`
	Duration  float64 `json:"duration"`
	Format    string  `json:"format"`
}

// Client talks to the Cloudinary REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a Cloudinary client. Enabled() is false when credentials
// are missing, in which case uploads fail fast and callers fall back to
// locally served URLs.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Minute},
		logger: logger,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.cfg.CloudName != "" && c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

// UploadVideo uploads a local video file under the given public ID and
// returns the hosted URL and remote identifier.
func (c *Client) UploadVideo(ctx context.Context, localPath, publicID string) (*UploadResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		for k, v := range params {
			_ = mw.WriteField(k, v)
		}
		_ = mw.WriteField("api_key", c.cfg.APIKey)
		_ = mw.WriteField("signature", c.sign(params))
		part, err := mw.CreateFormFile("file", filepath.Base(localPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	url := fmt.Sprintf("%s/%s/video/upload", apiBase, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upload status %d: %s", resp.StatusCode, string(body))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Info("video uploaded to cloudinary", zap.String("public_id", result.PublicID))
	return &result, nil
}

// DeleteVideo removes a hosted video by public ID.
func (c *Client) DeleteVideo(ctx context.Context, publicID string) error {
	if !c.Enabled() {
		return fmt.Errorf("cloudinary credentials not configured")
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := fmt.Sprintf("public_id=%s&timestamp=%s&api_key=%s&signature=%s",
		publicID, timestamp, c.cfg.APIKey, c.sign(params))
	url := fmt.Sprintf("%s/%s/video/destroy", apiBase, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("destroy status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// GetVideo fetches metadata for a hosted video by public ID.
func (c *Client) GetVideo(ctx context.Context, publicID string) (*UploadResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	url := fmt.Sprintf("%s/%s/resources/video/upload/%s", apiBase, c.cfg.CloudName, publicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("video %s not found", publicID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resource status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// sign builds the Cloudinary request signature: SHA-1 over the sorted
// query-style parameter string concatenated with the API secret.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
