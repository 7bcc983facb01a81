package garminconnect

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidDownloadFormat is returned for an unknown DownloadFormat.
	ErrInvalidDownloadFormat = errors.New("garmin connect: invalid download format")

	// ErrInvalidActivityID is returned for a non-positive activity id.
	ErrInvalidActivityID = errors.New("garmin connect: invalid activity id")

	// ErrInvalidDeviceID is returned for an empty device id.
	ErrInvalidDeviceID = errors.New("garmin connect: invalid device id")

	// ErrNilStorage is returned by ExportActivity without a storage.
	ErrNilStorage = errors.New("garmin connect: export storage is nil")
)

// APIError is a non-2xx answer the session layer does not classify itself.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("garmin connect: api error [%d]: %s", e.StatusCode, msg)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
