package export

import (
	"context"
	"io"
	"path"
	"strings"
)

// File describes a stored export.
type File struct {
	Key          string `json:"key" yaml:"key"` // slash-separated key relative to the storage root
	Size         int64  `json:"size" yaml:"size"`
	ContentType  string `json:"content_type" yaml:"content_type"`
	AbsolutePath string `json:"absolute_path,omitempty" yaml:"absolute_path,omitempty"` // local storage only
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Storage persists activity exports.
type Storage interface {
	// Save writes r under key, replacing any existing object.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (*File, error)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) bool
	// URL returns the public URL for key, or "" when the storage has none.
	URL(key string) string
}

// CleanKey normalizes key to a relative slash path and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.ReplaceAll(key, "\x00", "")
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return "", ErrInvalidPath
	}
	return key, nil
}
