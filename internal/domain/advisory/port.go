package advisory

import (
	"context"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// Client writes commentary for an analysis and reports the model used.
type Client interface {
	Narrate(ctx context.Context, a *rbi.Analysis) (text, model string, err error)
}

// Repository port for persisting and querying narratives
type Repository interface {
	Save(ctx context.Context, n *Narrative) error
	LatestByAnalysis(ctx context.Context, analysisID string) (*Narrative, error)
}
