package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

var at = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func analysis() (*rbi.Analysis, *inspections.Schedule) {
	a := &rbi.Analysis{
		ID:                      "a1",
		EquipmentID:             "eq-1",
		EquipmentTag:            "V-101",
		AnalysisDate:            at,
		POFValue:                0.32625,
		POFCategory:             rbi.CategoryMediumLow,
		COFTotal:                25500,
		COFCategory:             rbi.CategoryMediumLow,
		RiskValue:               8319.375,
		RiskCategory:            rbi.CategoryMediumLow,
		InspectionIntervalYears: 4,
		RecommendedNDTMethods:   []string{"AUT", "UT", "VT"},
		DamageMechanisms:        []string{"Uniform Corrosion"},
		NextInspectionDate:      at.AddDate(4, 0, 0),
		ProductType:             rbi.ProductFlammable,
	}
	s := &inspections.Schedule{
		ID:            "s1",
		AnalysisID:    "a1",
		EquipmentTag:  "V-101",
		Type:          "Internal Inspection",
		ScheduledDate: a.NextInspectionDate,
		NDTMethods:    a.RecommendedNDTMethods,
		Status:        inspections.StatusScheduled,
		CreatedAt:     at,
	}
	return a, s
}

func TestAnalysisCreateCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, s := analysis()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rbi_analyses")).
		WithArgs("a1", "eq-1", "V-101", at,
			0.32625, "Medium-Low", 0.0, 0.0, 0.0, 25500.0, "Medium-Low",
			8319.375, "Medium-Low", 4,
			`["AUT","UT","VT"]`, `["Uniform Corrosion"]`, a.NextInspectionDate,
			0.0, 0.0, 0.0, "flammable", `[]`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inspection_schedules")).
		WithArgs("s1", "a1", "V-101", "Internal Inspection", a.NextInspectionDate,
			`["AUT","UT","VT"]`, "scheduled", nil, nil, at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, NewAnalysisRepository(db).Create(context.Background(), a, s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisCreateRollsBackWhenScheduleFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, s := analysis()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rbi_analyses")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inspection_schedules")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewAnalysisRepository(db).Create(context.Background(), a, s)
	assert.ErrorIs(t, err, fault.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisCreateDuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, s := analysis()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rbi_analyses")).
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'a1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	err = NewAnalysisRepository(db).Create(context.Background(), a, s)
	assert.ErrorIs(t, err, fault.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "equipment_id", "equipment_tag", "analysis_date",
		"pof_value", "pof_category", "cof_asset", "cof_hse", "cof_env", "cof_total", "cof_category",
		"risk_value", "risk_category", "inspection_interval_years",
		"recommended_ndt_methods", "damage_mechanisms", "next_inspection_date",
		"flammable_coefficient", "inventory_mass", "material_cost_per_unit", "product_type",
		"data_quality_warnings"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM rbi_analyses WHERE id=?")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"a1", "eq-1", "V-101", at,
			0.5, "Medium", 100.0, 200.0, 300.0, 600.0, "Low",
			300.0, "Low", 5,
			`["MT","PT"]`, `["Mechanical Fatigue"]`, at.AddDate(5, 0, 0),
			0.2, 10.0, 1.0, "toxic", `["operating pressure exceeds design"]`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM rbi_analyses WHERE id=?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewAnalysisRepository(db)
	a, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, rbi.CategoryMedium, a.POFCategory)
	assert.Equal(t, rbi.CategoryLow, a.RiskCategory)
	assert.Equal(t, []string{"MT", "PT"}, a.RecommendedNDTMethods)
	assert.Equal(t, rbi.ProductToxic, a.ProductType)
	assert.Len(t, a.DataQualityWarnings, 1)

	_, err = repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, fault.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisListAppliesLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY analysis_date DESC, id DESC LIMIT ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := NewAnalysisRepository(db).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentCreateDuplicateTag(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO equipment")).
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'V-101' for key 'uq_equipment_tag'"})

	err = NewEquipmentRepository(db).Create(context.Background(), &equipment.Equipment{ID: "e1", Tag: "V-101"})
	assert.ErrorIs(t, err, fault.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM equipment WHERE id=?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewEquipmentRepository(db).Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, fault.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentAssignFLOCUsesGivenTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stamp := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE equipment SET floc=?, corrosion_loop=?, updated_at=? WHERE id=?;")).
		WithArgs("U100-V", nil, stamp, "eq-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	floc := "U100-V"
	err = NewEquipmentRepository(db).AssignFLOC(context.Background(), "eq-1", &floc, nil, stamp)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func scheduleRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "analysis_id", "equipment_tag", "inspection_type", "scheduled_date",
		"ndt_methods", "status", "completed_date", "findings", "created_at"}).
		AddRow("s1", "a1", "V-101", "Internal Inspection", at, `["UT"]`, status, nil, nil, at)
}

func TestScheduleComplete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	done := at.AddDate(4, 0, 1)
	findings := "no wall loss"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inspection_schedules WHERE id=? FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(scheduleRow("scheduled"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inspection_schedules SET status=?, completed_date=?, findings=? WHERE id=?")).
		WithArgs("completed", done, findings, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := NewScheduleRepository(db).Complete(context.Background(), "s1", done, &findings)
	require.NoError(t, err)
	assert.Equal(t, inspections.StatusCompleted, s.Status)
	assert.Equal(t, done, *s.CompletedDate)
	assert.Equal(t, []string{"UT"}, s.NDTMethods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleCompleteTwiceIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(scheduleRow("completed"))
	mock.ExpectRollback()

	_, err = NewScheduleRepository(db).Complete(context.Background(), "s1", at, nil)
	assert.ErrorIs(t, err, fault.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
