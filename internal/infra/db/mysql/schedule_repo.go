package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
)

type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, analysis_id, equipment_tag, inspection_type, scheduled_date,
       ndt_methods, status, completed_date, findings, created_at`

func scanSchedule(row scanner) (*domain.Schedule, error) {
	var s domain.Schedule
	var methods string
	var completed sql.NullTime
	var findings sql.NullString
	if err := row.Scan(
		&s.ID, &s.AnalysisID, &s.EquipmentTag, &s.Type, &s.ScheduledDate,
		&methods, &s.Status, &completed, &findings, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if s.NDTMethods, err = decodeList(methods); err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		s.CompletedDate = &t
	}
	s.Findings = stringPtr(findings)
	return &s, nil
}

// List ordered by scheduled date, soonest first
func (r *ScheduleRepository) List(ctx context.Context) ([]*domain.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM inspection_schedules ORDER BY scheduled_date ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr("list inspection schedules", err)
	}
	defer rows.Close()

	out := []*domain.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, mapErr("list inspection schedules", err)
		}
		out = append(out, s)
	}
	return out, mapErr("list inspection schedules", rows.Err())
}

func (r *ScheduleRepository) Get(ctx context.Context, id domain.ScheduleID) (*domain.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM inspection_schedules WHERE id=? LIMIT 1;`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr("inspection schedule "+string(id), err)
	}
	return s, nil
}

// Complete lock row, cek status, lalu update dalam satu transaksi
func (r *ScheduleRepository) Complete(ctx context.Context, id domain.ScheduleID, completedAt time.Time, findings *string) (*domain.Schedule, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapErr("begin complete tx", err)
	}
	defer tx.Rollback()

	q := `SELECT ` + scheduleColumns + ` FROM inspection_schedules WHERE id=? FOR UPDATE;`
	s, err := scanSchedule(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr("inspection schedule "+string(id), err)
	}
	if s.Status != domain.StatusScheduled {
		return nil, fault.Conflict("inspection schedule %s is already %s", id, s.Status)
	}

	const upd = `UPDATE inspection_schedules SET status=?, completed_date=?, findings=? WHERE id=?;`
	if _, err := tx.ExecContext(ctx, upd, domain.StatusCompleted, completedAt, nullString(findings), id); err != nil {
		return nil, mapErr("complete inspection", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapErr("commit complete", err)
	}

	s.Status = domain.StatusCompleted
	s.CompletedDate = &completedAt
	s.Findings = findings
	return s, nil
}
