package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem.
// All writes are confined to baseDir.
type LocalStorage struct {
	baseDir      string // absolute
	baseURL      string
	writeTimeout time.Duration
}

// LocalOption configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithLocalWriteTimeout bounds a single Save. Without it the caller's context
// deadline applies.
func WithLocalWriteTimeout(timeout time.Duration) LocalOption {
	return func(s *LocalStorage) {
		s.writeTimeout = timeout
	}
}

// NewLocalStorage creates baseDir if needed. baseURL may be empty.
func NewLocalStorage(baseDir, baseURL string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}
	if err := os.MkdirAll(absBaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	s := &LocalStorage{baseDir: absBaseDir, baseURL: baseURL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save copies r to key in 32KB chunks, checking ctx between chunks.
// A partial file is removed when the copy fails.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, contentType string) (*File, error) {
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	absPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err)
	}

	fail := func(err error) (*File, error) {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return nil, err
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return fail(fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr))
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("%w: %v", ErrFailedToReadSource, readErr))
		}
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err)
	}

	return &File{
		Key:          key,
		Size:         written,
		ContentType:  contentType,
		AbsolutePath: absPath,
		URL:          s.URL(key),
	}, nil
}

// Exists reports whether key is present. Invalid keys and a done ctx report false.
func (s *LocalStorage) Exists(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}
	key, err := CleanKey(key)
	if err != nil {
		return false
	}
	absPath, err := s.resolvePath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(absPath)
	return err == nil
}

// URL returns baseURL+key, or "" when no base URL was configured.
func (s *LocalStorage) URL(key string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(key, "/")
}

// resolvePath maps a clean key to an absolute path inside baseDir.
func (s *LocalStorage) resolvePath(key string) (string, error) {
	absPath, err := filepath.Abs(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}
	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}
	return absPath, nil
}
