package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
)

// LocalStore keeps blobs on the local filesystem. It is the development
// fallback when no S3 bucket is configured.
type LocalStore struct {
	root string
}

// NewLocalStore creates the store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &LocalStore{root: dir}, nil
}

var _ portssvc.AttachmentStore = (*LocalStore)(nil)

func (s *LocalStore) Put(_ context.Context, name string, _ string, data []byte) (string, error) {
	// Flatten path separators out of user-supplied names.
	safe := strings.ReplaceAll(filepath.Base(name), string(os.PathSeparator), "_")
	key := uuid.NewString() + "-" + safe
	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}
