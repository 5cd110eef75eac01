package rbi

import (
	"context"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
)

// Repository port for analyses. Create must persist the analysis and its
// schedule atomically: both or neither.
type Repository interface {
	Create(ctx context.Context, a *Analysis, s *inspections.Schedule) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	// List returns analyses newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Analysis, error)
}
