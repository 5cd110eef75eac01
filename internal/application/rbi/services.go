package rbi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/mechanisms"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// Service implements use-cases untuk RBI analysis.
// Safe for concurrent use; all state lives behind the ports.
type Service struct {
	Equipment  equipment.Repository
	Analyses   domain.Repository
	Engine     *domain.Engine
	Mechanisms mechanisms.Catalog
	Clock      application.Clock
	Metrics    application.Metrics
	Logger     *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default().With("component", "rbi")
}

func (s *Service) metrics() application.Metrics {
	if s.Metrics != nil {
		return s.Metrics
	}
	return application.NopMetrics{}
}

// RunResult is the persisted analysis plus the schedule created with it.
type RunResult struct {
	*domain.Analysis
	Schedule *inspections.Schedule `json:"inspection_schedule"`
}

// Run validates the request, scores it, and persists the analysis together
// with its inspection schedule. Nothing is written when any step fails.
func (s *Service) Run(ctx context.Context, in domain.Input) (RunResult, error) {
	res, err := s.run(ctx, in)
	if err != nil {
		kind := "unknown"
		if k := fault.Kind(err); k != nil {
			kind = k.Error()
		}
		s.metrics().AnalysisFailed(ctx, kind)
		s.logger().WarnContext(ctx, "analysis rejected",
			"equipment_id", in.EquipmentID, "kind", kind, "error", err)
		return RunResult{}, err
	}

	s.metrics().AnalysisRecorded(ctx, res.RiskCategory.String(), res.POFValue)
	s.logger().InfoContext(ctx, "analysis recorded",
		"analysis_id", res.ID,
		"equipment_tag", res.EquipmentTag,
		"pof", res.POFValue,
		"cof_total", res.COFTotal,
		"risk_category", res.RiskCategory.String(),
		"next_inspection", res.NextInspectionDate.Format("2006-01-02"),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, in domain.Input) (RunResult, error) {
	if err := in.Validate(); err != nil {
		return RunResult{}, err
	}

	eq, err := s.Equipment.Get(ctx, equipment.ID(in.EquipmentID))
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return RunResult{}, fault.NotFound("equipment %s not found", in.EquipmentID)
		}
		return RunResult{}, fault.Storage("load equipment", err)
	}

	a, err := s.Engine.Compute(eq, in, s.Clock.Now())
	if err != nil {
		return RunResult{}, err
	}
	a.ID = domain.AnalysisID(uuid.NewString())

	sched, err := domain.ScheduleFor(a, eq.Class)
	if err != nil {
		return RunResult{}, err
	}
	sched.ID = inspections.ScheduleID(uuid.NewString())

	if err := s.Analyses.Create(ctx, a, sched); err != nil {
		return RunResult{}, fault.Storage("persist analysis", err)
	}
	return RunResult{Analysis: a, Schedule: sched}, nil
}

// List returns analyses newest first. limit <= 0 means all.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	list, err := s.Analyses.List(ctx, limit)
	if err != nil {
		return nil, fault.Storage("list analyses", err)
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	a, err := s.Analyses.Get(ctx, id)
	if err != nil {
		return nil, fault.Storage("get analysis", err)
	}
	return a, nil
}

// DamageMechanisms returns the catalog in its stable order.
func (s *Service) DamageMechanisms() []mechanisms.DamageMechanism {
	return s.Mechanisms.ListAll()
}
