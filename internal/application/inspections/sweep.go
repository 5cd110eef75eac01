package inspections

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the overdue sweep every morning at 06:00.
const DefaultSweepSchedule = "0 6 * * *"

// StartSweep registers SweepOverdue on a standard 5-field cron expression
// and starts the scheduler. An empty expression uses DefaultSweepSchedule.
// Stop the returned cron to end the job.
func (s *Service) StartSweep(ctx context.Context, schedule string) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid overdue sweep schedule %q: %w", schedule, err)
	}

	c := cron.New(cron.WithParser(parser), cron.WithLocation(s.Clock.Now().Location()))
	if _, err := c.AddFunc(schedule, func() {
		_, _ = s.SweepOverdue(ctx)
	}); err != nil {
		return nil, err
	}
	c.Start()
	s.logger().InfoContext(ctx, "overdue sweep scheduled", "cron", schedule)
	return c, nil
}
