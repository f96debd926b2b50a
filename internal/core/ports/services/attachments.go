package services

import "context"

// AttachmentStore holds named binary blobs outside the database. The core
// never inspects contents; it only needs a stable key for later retrieval and
// presence/absence for policy checks.
type AttachmentStore interface {
	// Put stores a blob and returns its stable storage key.
	Put(ctx context.Context, name string, mimeType string, data []byte) (string, error)

	// Get retrieves a previously stored blob by key.
	Get(ctx context.Context, key string) ([]byte, error)
}
