package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// Service asks a model to explain an analysis and keeps the answer.
type Service struct {
	Analyses   rbi.Repository
	Client     domain.Client
	Narratives domain.Repository
	Clock      application.Clock
	Logger     *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default().With("component", "advisory")
}

// Narrate generates and stores commentary for one analysis.
// Quota errors from the provider are returned as domain.ErrQuotaExceeded.
func (s *Service) Narrate(ctx context.Context, analysisID rbi.AnalysisID) (*domain.Narrative, error) {
	if s.Client == nil {
		return nil, fault.NotConfigured("no narrative provider is configured")
	}
	a, err := s.Analyses.Get(ctx, analysisID)
	if err != nil {
		return nil, fault.Storage("get analysis", err)
	}

	text, model, err := s.Client.Narrate(ctx, a)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			s.logger().WarnContext(ctx, "narrative provider quota exceeded", "analysis_id", a.ID)
			return nil, err
		}
		return nil, fmt.Errorf("narrate analysis %s: %w", a.ID, err)
	}

	n := &domain.Narrative{
		ID:         domain.NarrativeID(uuid.NewString()),
		AnalysisID: string(a.ID),
		Model:      model,
		Text:       text,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Narratives.Save(ctx, n); err != nil {
		return nil, fault.Storage("save narrative", err)
	}
	s.logger().InfoContext(ctx, "narrative stored", "analysis_id", a.ID, "model", model)
	return n, nil
}

func (s *Service) Latest(ctx context.Context, analysisID rbi.AnalysisID) (*domain.Narrative, error) {
	n, err := s.Narratives.LatestByAnalysis(ctx, string(analysisID))
	if err != nil {
		return nil, fault.Storage("get narrative", err)
	}
	return n, nil
}
