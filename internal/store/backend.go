package store

import (
	"context"
	"errors"
)

// Document names for the two persisted collections.
const (
	TasksDocument    = "tasks"
	ProjectsDocument = "projects"
)

// ErrNoDocument is returned by Backend.Load when a document has never
// been saved.
var ErrNoDocument = errors.New("document does not exist")

// Backend persists whole JSON documents by name. Save must be atomic: a
// concurrent or later Load observes either the previous or the new
// document, never a partial write.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error

	// Lifecycle
	Close() error
}
