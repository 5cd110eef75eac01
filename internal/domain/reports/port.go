package reports

import (
	"context"
	"io"
)

// ArtifactStore port untuk upload report ke object storage
type ArtifactStore interface {
	// Upload stores size bytes from r under key and returns a URL for it.
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}
