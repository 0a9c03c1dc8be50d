package notify

import "errors"

var (
	// ErrMediaUnavailable means an uploaded file could not be fetched. Nothing was persisted.
	ErrMediaUnavailable = errors.New("media unavailable")

	// ErrFileSystem means a user content file could not be created or written
	ErrFileSystem = errors.New("file system error")

	// ErrStoreFailure means the notification record could not be read or written
	ErrStoreFailure = errors.New("store failure")

	// ErrPreviewFailure means the configuration was saved but no preview could be rendered
	ErrPreviewFailure = errors.New("preview failure")
)
