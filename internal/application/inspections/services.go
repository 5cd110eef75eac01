package inspections

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
)

// Service implements use-cases untuk inspection schedule
type Service struct {
	Repo    domain.Repository
	Clock   application.Clock
	Metrics application.Metrics
	Logger  *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default().With("component", "inspections")
}

func (s *Service) List(ctx context.Context) ([]*domain.Schedule, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fault.Storage("list inspection schedules", err)
	}
	if list == nil {
		list = []*domain.Schedule{}
	}
	return list, nil
}

// Complete marks a scheduled inspection as done. Blank findings are stored
// as absent.
func (s *Service) Complete(ctx context.Context, id domain.ScheduleID, findings string) (*domain.Schedule, error) {
	var f *string
	if v := strings.TrimSpace(findings); v != "" {
		f = &v
	}
	sc, err := s.Repo.Complete(ctx, id, s.Clock.Now(), f)
	if err != nil {
		return nil, fault.Storage("complete inspection", err)
	}
	s.logger().InfoContext(ctx, "inspection completed",
		"schedule_id", sc.ID, "equipment_tag", sc.EquipmentTag)
	return sc, nil
}

// Overdue returns scheduled entries whose date is before now.
func (s *Service) Overdue(ctx context.Context, now time.Time) ([]*domain.Schedule, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*domain.Schedule{}
	for _, sc := range list {
		if sc.Overdue(now) {
			out = append(out, sc)
		}
	}
	return out, nil
}

// SweepOverdue logs every overdue inspection and records the count.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := s.Clock.Now()
	overdue, err := s.Overdue(ctx, now)
	if err != nil {
		s.logger().ErrorContext(ctx, "overdue sweep failed", "error", err)
		return 0, err
	}
	for _, sc := range overdue {
		s.logger().WarnContext(ctx, "inspection overdue",
			"schedule_id", sc.ID,
			"equipment_tag", sc.EquipmentTag,
			"inspection_type", sc.Type,
			"scheduled_date", sc.ScheduledDate.Format("2006-01-02"),
			"days_late", int(now.Sub(sc.ScheduledDate).Hours()/24),
		)
	}
	if s.Metrics != nil {
		s.Metrics.OverdueInspections(ctx, len(overdue))
	}
	s.logger().InfoContext(ctx, "overdue sweep complete", "overdue", len(overdue))
	return len(overdue), nil
}
