package equipment

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, e *Equipment) error
	Update(ctx context.Context, e *Equipment) error
	Get(ctx context.Context, id ID) (*Equipment, error)
	List(ctx context.Context) ([]*Equipment, error)
	Delete(ctx context.Context, id ID) error
	AssignFLOC(ctx context.Context, id ID, floc, corrosionLoop *string, updatedAt time.Time) error
}
