package inspections

import (
	"context"
	"time"
)

// Repository port. Schedules are created together with their analysis
// through rbi.Repository, so there is no standalone Create here.
type Repository interface {
	List(ctx context.Context) ([]*Schedule, error)
	Get(ctx context.Context, id ScheduleID) (*Schedule, error)
	// Complete moves a scheduled entry to completed. It fails with
	// fault.ErrConflict when the entry is not in the scheduled state.
	Complete(ctx context.Context, id ScheduleID, completedAt time.Time, findings *string) (*Schedule, error)
}
