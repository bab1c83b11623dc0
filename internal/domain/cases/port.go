package cases

import (
	"context"
	"io"
)

// Repository port (interface for persistence). Insert returns the id assigned
// by the storage engine; id assignment must serialize there (auto-increment),
// not in process.
type Repository interface {
	Insert(ctx context.Context, c *Case) (CaseID, error)
	GetByOwner(ctx context.Context, id CaseID, ownerID int64) (*Case, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Case, error)
}

// ImageStore port (interface for image object storage). Put stores the raw
// bytes under key and returns an opaque reference; the core never inspects
// image content.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
