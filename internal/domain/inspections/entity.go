package inspections

import "time"

// ScheduleID tipe untuk InspectionSchedule
type ScheduleID string

// Status enum
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// Schedule is a planned inspection created from an analysis.
type Schedule struct {
	ID            ScheduleID `json:"id"`
	AnalysisID    string     `json:"analysis_id"`
	EquipmentTag  string     `json:"equipment_tag"`
	Type          string     `json:"inspection_type"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	NDTMethods    []string   `json:"ndt_methods"`
	Status        Status     `json:"status"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Findings      *string    `json:"findings,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Overdue reports whether a scheduled entry is past its date.
func (s *Schedule) Overdue(now time.Time) bool {
	return s.Status == StatusScheduled && s.ScheduledDate.Before(now)
}
