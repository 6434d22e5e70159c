package storage

import (
	"context"
	"io"
)

// BlobStore is a string-keyed store of string values. Set replaces the whole
// value in one write; there are no partial updates.
type BlobStore interface {
	// Get returns found=false when the key was never set
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value string) error

	// Modify reads the value under key, passes it to fn and stores fn's result
	// as one atomic step: no other Modify or Set on the store interleaves. When
	// fn returns an error nothing is written and that error is returned.
	Modify(ctx context.Context, key string, fn ModifyFunc) error
}

// ModifyFunc computes the next value of a blob from its current one
type ModifyFunc func(value string, found bool) (string, error)

// FileStorage keeps generated files such as report exports
type FileStorage interface {
	// Upload stores a file and returns its storage path
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a stored file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// GetURL returns the public URL of a stored file
	GetURL(ctx context.Context, path string) (string, error)
}
