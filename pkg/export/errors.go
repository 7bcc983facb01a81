package export

import "errors"

var (
	ErrInvalidPath   = errors.New("invalid path") // path traversal or empty key
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToCreateFile      = errors.New("failed to create file")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToReadSource      = errors.New("failed to read source")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
	ErrFailedToLoadConfig      = errors.New("failed to load AWS config")

	// S3 classification.
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")
)
