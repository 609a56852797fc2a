package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/validate"
)

// FileInfo describes one stored file.
type FileInfo struct {
	Path     string
	Filename string
	Size     int64
	ModTime  time.Time
}

// Local stores video files under a fixed root directory on the local filesystem.
type Local struct {
	root   string
	logger *zap.Logger
}

// NewLocal creates the storage root if needed and returns a Local store.
func NewLocal(root string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	logger.Info("video storage ready", zap.String("root", root))
	return &Local{root: root, logger: logger}, nil
}

// Root returns the storage root directory.
func (l *Local) Root() string { return l.root }

// Save writes the reader's content under a sanitized filename and returns the
// full path. The filename must not escape the storage root.
func (l *Local) Save(r io.Reader, filename string) (string, error) {
	safe := validate.SanitizeFilename(filename)
	if safe == "" {
		return "", fmt.Errorf("empty filename after sanitization")
	}
	path := filepath.Join(l.root, safe)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	l.logger.Info("video file saved", zap.String("path", path))
	return path, nil
}

// Delete removes a file. Missing files are not an error.
func (l *Local) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("file not found for deletion", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("delete file: %w", err)
	}
	l.logger.Info("file deleted", zap.String("path", path))
	return nil
}

// Exists reports whether the file is present.
func (l *Local) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the file size in bytes.
func (l *Local) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return info.Size(), nil
}

// Info returns metadata for one stored file.
func (l *Local) Info(path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	return &FileInfo{
		Path:     path,
		Filename: filepath.Base(path),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}

// ListOlderThan enumerates stored files whose modification time is older than
// maxAge. Used by the retention scan.
func (l *Local) ListOlderThan(maxAge time.Duration) ([]FileInfo, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			out = append(out, FileInfo{
				Path:     filepath.Join(l.root, e.Name()),
				Filename: e.Name(),
				Size:     info.Size(),
				ModTime:  info.ModTime(),
			})
		}
	}
	return out, nil
}

// Extension returns the lowercase extension of a stored path, with dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
