package garminconnect

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/garminconnect/pkg/export"
	"github.com/dmitrymomot/garminconnect/pkg/logger"
)

// DownloadFormat selects the file flavour of an activity download.
type DownloadFormat int

const (
	// FormatOriginal is the uploaded file (usually FIT) wrapped in a ZIP archive.
	FormatOriginal DownloadFormat = iota + 1
	FormatTCX
	FormatGPX
	FormatKML
	// FormatCSV is a CSV of the activity splits.
	FormatCSV
)

var formatNames = map[DownloadFormat]string{
	FormatOriginal: "original",
	FormatTCX:      "tcx",
	FormatGPX:      "gpx",
	FormatKML:      "kml",
	FormatCSV:      "csv",
}

// String returns the lower-case format name.
func (f DownloadFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "DownloadFormat(" + strconv.Itoa(int(f)) + ")"
}

// Valid reports whether f is a known format.
func (f DownloadFormat) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// Extension returns the file extension of downloads in format f.
func (f DownloadFormat) Extension() string {
	if f == FormatOriginal {
		return "zip"
	}
	return f.String()
}

// ContentType returns the MIME type of downloads in format f.
func (f DownloadFormat) ContentType() string {
	switch f {
	case FormatOriginal:
		return "application/zip"
	case FormatTCX:
		return "application/vnd.garmin.tcx+xml"
	case FormatGPX:
		return "application/gpx+xml"
	case FormatKML:
		return "application/vnd.google-earth.kml+xml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// ParseDownloadFormat parses a case-insensitive format name.
func ParseDownloadFormat(s string) (DownloadFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDownloadFormat, s)
}

func (f DownloadFormat) path(activityID int64) string {
	id := strconv.FormatInt(activityID, 10)
	if f == FormatOriginal {
		return "download-service/files/activity/" + id
	}
	return "download-service/export/" + f.String() + "/activity/" + id
}

// DownloadActivity returns the raw activity file in format f.
func (c *Client) DownloadActivity(ctx context.Context, activityID int64, f DownloadFormat) ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDownloadFormat, f)
	}
	if activityID <= 0 {
		return nil, ErrInvalidActivityID
	}
	return c.get(ctx, f.path(activityID), nil, "*/*", 0)
}

// ExportKey returns the storage key ExportActivity writes to.
func ExportKey(activityID int64, f DownloadFormat) string {
	return "activities/" + strconv.FormatInt(activityID, 10) + "." + f.Extension()
}

// ExportActivity downloads an activity and saves it to store under ExportKey.
func (c *Client) ExportActivity(ctx context.Context, store export.Storage, activityID int64, f DownloadFormat) (*export.File, error) {
	if store == nil {
		return nil, ErrNilStorage
	}

	data, err := c.DownloadActivity(ctx, activityID, f)
	if err != nil {
		return nil, err
	}

	file, err := store.Save(ctx, ExportKey(activityID, f), bytes.NewReader(data), f.ContentType())
	if err != nil {
		return nil, fmt.Errorf("save activity %d: %w", activityID, err)
	}

	c.logger.DebugContext(ctx, "activity exported",
		logger.ActivityID(activityID),
		"format", f.String(),
		"key", file.Key,
		"size", file.Size,
	)
	return file, nil
}
