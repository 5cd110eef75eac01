package equipment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/db/memory"
)

var now = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newService() *Service {
	return &Service{Repo: memory.NewStore().Equipment(), Clock: application.FixedClock{T: now}}
}

func cmd(tag string) Command {
	return Command{
		Tag:               tag,
		Class:             domain.ClassPiping,
		DesignPressure:    300,
		OperatingPressure: 250,
		Thickness:         0.322,
		YearCommissioned:  2008,
		Location:          "Unit 2",
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndUpdate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	e, err := svc.Create(ctx, cmd(" P-201 "))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "P-201", e.Tag)
	assert.Equal(t, now, e.CreatedAt)

	_, err = svc.Create(ctx, cmd("P-201"))
	assert.ErrorIs(t, err, fault.ErrConflict)

	c := cmd("P-201")
	c.Thickness = 0.5
	upd, err := svc.Update(ctx, e.ID, c)
	require.NoError(t, err)
	assert.Equal(t, 0.5, upd.Thickness)

	_, err = svc.Update(ctx, "missing", c)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	tests := map[string]func(*Command){
		"empty tag":          func(c *Command) { c.Tag = "  " },
		"unknown class":      func(c *Command) { c.Class = "boilers" },
		"zero thickness":     func(c *Command) { c.Thickness = 0 },
		"year too old":       func(c *Command) { c.YearCommissioned = 1899 },
		"year in the future": func(c *Command) { c.YearCommissioned = 2026 },
		"negative volume":    func(c *Command) { c.Volume = ptr(-1.0) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newService()
			c := cmd("P-1")
			mutate(&c)
			_, err := svc.Create(context.Background(), c)
			assert.ErrorIs(t, err, fault.ErrInvalidInput)

			list, _ := svc.List(context.Background())
			assert.Empty(t, list)
		})
	}
}

func TestAssignFLOCAndGroups(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, cmd("P-1"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, cmd("P-2"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, cmd("P-3"))
	require.NoError(t, err)

	got, err := svc.AssignFLOC(ctx, a.ID, ptr("U2-CDU"), ptr("CL-01"))
	require.NoError(t, err)
	assert.Equal(t, "U2-CDU", *got.FLOC)
	assert.Equal(t, "CL-01", *got.CorrosionLoop)

	_, err = svc.AssignFLOC(ctx, b.ID, ptr("U2-CDU"), nil)
	require.NoError(t, err)

	groups, err := svc.FLOCGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups.Groups["U2-CDU"], 2)
	assert.Len(t, groups.Unassigned, 1)

	// clearing the floc drops the loop too
	got, err = svc.AssignFLOC(ctx, a.ID, ptr(""), ptr("CL-01"))
	require.NoError(t, err)
	assert.Nil(t, got.FLOC)
	assert.Nil(t, got.CorrosionLoop)

	_, err = svc.AssignFLOC(ctx, "missing", ptr("X"), nil)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestAssignFLOCStampsClockTime(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, cmd("P-1"))
	require.NoError(t, err)
	require.Equal(t, now, a.UpdatedAt)

	later := now.Add(36 * time.Hour)
	svc.Clock = application.FixedClock{T: later}
	got, err := svc.AssignFLOC(ctx, a.ID, ptr("U2-CDU"), nil)
	require.NoError(t, err)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, now, got.CreatedAt)
}

func TestDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	e, err := svc.Create(ctx, cmd("P-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, fault.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), fault.ErrNotFound)
}
