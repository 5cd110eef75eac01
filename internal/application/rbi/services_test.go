package rbi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/catalog"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/db/memory"
)

var now = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

type spyMetrics struct {
	recorded []string
	failed   []string
}

func (m *spyMetrics) AnalysisRecorded(_ context.Context, cat string, _ float64) {
	m.recorded = append(m.recorded, cat)
}
func (m *spyMetrics) AnalysisFailed(_ context.Context, kind string) { m.failed = append(m.failed, kind) }
func (m *spyMetrics) OverdueInspections(context.Context, int) {}

// brokenAnalyses fails every write, the way a dropped connection would
// after the transaction rolled back.
type brokenAnalyses struct {
	domain.Repository
	calls int
}

func (b *brokenAnalyses) Create(context.Context, *domain.Analysis, *inspections.Schedule) error {
	b.calls++
	return errors.New("connection reset")
}

func newService(t *testing.T) (*Service, *memory.Store, *spyMetrics) {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)

	store := memory.NewStore()
	require.NoError(t, store.Equipment().Create(context.Background(), &equipment.Equipment{
		ID:                   "eq-1",
		Tag:                  "V-101",
		Class:                equipment.ClassVessels,
		DesignPressure:       150,
		OperatingPressure:    140,
		DesignTemperature:    400,
		OperatingTemperature: 380,
		Thickness:            0.75,
		YearCommissioned:     2000,
	}))

	m := &spyMetrics{}
	return &Service{
		Equipment:  store.Equipment(),
		Analyses:   store.Analyses(),
		Engine:     domain.NewEngine(cat),
		Mechanisms: cat,
		Clock:      application.FixedClock{T: now},
		Metrics:    m,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, store, m
}

func input() domain.Input {
	return domain.Input{
		EquipmentID:          "eq-1",
		DamageMechanisms:     []string{"Uniform Corrosion"},
		FlammableCoefficient: 0.5,
		InventoryMass:        1000,
		MaterialCostPerUnit:  5,
		ProductType:          domain.ProductFlammable,
	}
}

func TestRunPersistsAnalysisAndSchedule(t *testing.T) {
	svc, store, m := newService(t)
	ctx := context.Background()

	res, err := svc.Run(ctx, input())
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	require.NotNil(t, res.Schedule)

	assert.Equal(t, domain.CategoryMediumLow, res.RiskCategory)
	assert.Equal(t, 4, res.InspectionIntervalYears)
	assert.Equal(t, string(res.ID), res.Schedule.AnalysisID)
	assert.Equal(t, "Internal Inspection", res.Schedule.Type)
	assert.Equal(t, res.NextInspectionDate, res.Schedule.ScheduledDate)
	assert.Equal(t, inspections.StatusScheduled, res.Schedule.Status)

	stored, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.InDelta(t, res.POFValue, stored.POFValue, 1e-12)

	scheds, err := store.Schedules().List(ctx)
	require.NoError(t, err)
	require.Len(t, scheds, 1)
	assert.Equal(t, res.Schedule.ID, scheds[0].ID)

	assert.Equal(t, []string{"Medium-Low"}, m.recorded)
	assert.Empty(t, m.failed)
}

func TestRunRejectsWithoutWriting(t *testing.T) {
	tests := map[string]struct {
		mutate func(*domain.Input)
		kind   error
	}{
		"unknown equipment":   {func(in *domain.Input) { in.EquipmentID = "nope" }, fault.ErrNotFound},
		"no mechanisms":       {func(in *domain.Input) { in.DamageMechanisms = nil }, fault.ErrInvalidInput},
		"unknown mechanism":   {func(in *domain.Input) { in.DamageMechanisms = []string{"Gremlins"} }, fault.ErrInvalidInput},
		"coefficient too big": {func(in *domain.Input) { in.FlammableCoefficient = 1.2 }, fault.ErrInvalidInput},
		"zero inventory":      {func(in *domain.Input) { in.InventoryMass = 0 }, fault.ErrInvalidInput},
		"bad product":         {func(in *domain.Input) { in.ProductType = "radioactive" }, fault.ErrInvalidInput},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc, store, m := newService(t)
			ctx := context.Background()
			in := input()
			tc.mutate(&in)

			_, err := svc.Run(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			list, _ := store.Analyses().List(ctx, 0)
			assert.Empty(t, list)
			scheds, _ := store.Schedules().List(ctx)
			assert.Empty(t, scheds)
			assert.Len(t, m.failed, 1)
		})
	}
}

func TestRunStorageFailure(t *testing.T) {
	svc, store, m := newService(t)
	broken := &brokenAnalyses{}
	svc.Analyses = broken

	_, err := svc.Run(context.Background(), input())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrStorage)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, []string{"storage_failure"}, m.failed)

	scheds, _ := store.Schedules().List(context.Background())
	assert.Empty(t, scheds)
}

func TestListAndMechanisms(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	list, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.Run(ctx, input())
	require.NoError(t, err)
	list, err = svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, fault.ErrNotFound)

	assert.Len(t, svc.DamageMechanisms(), 20)
}
