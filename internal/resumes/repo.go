package resumes

import (
	"context"
	"time"
)

// Record is one stored row: the document as an opaque JSON blob plus the
// columns queries filter and sort on.
type Record struct {
	ID        string
	OwnerID   string
	Title     string
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repo defines row persistence for remotely stored resumes. Every method except
// GetPublic is scoped by owner.
type Repo interface {
	// Upsert inserts or overwrites the row keyed by ID. A row owned by another
	// owner is left untouched and ErrNotFound is returned.
	Upsert(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, ownerID, id string) (Record, error)
	// GetPublic reads a row regardless of owner.
	GetPublic(ctx context.Context, id string) (Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	// Delete removes the row if it belongs to ownerID and reports rows affected.
	Delete(ctx context.Context, ownerID, id string) (int64, error)
}
