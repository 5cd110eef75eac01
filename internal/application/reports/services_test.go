package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/db/memory"
)

var now = time.Date(2025, 6, 15, 9, 5, 0, 0, time.UTC)

type fakeStore struct {
	key, contentType string
	body             []byte
	err              error
}

func (f *fakeStore) Upload(_ context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if int64(len(b)) != size {
		return "", errors.New("size mismatch")
	}
	f.key, f.contentType, f.body = key, contentType, b
	return "http://minio.local/rbi/" + key, nil
}

func newService(t *testing.T) *Service {
	ctx := context.Background()
	store := memory.NewStore()
	floc := "U1-CDU"
	require.NoError(t, store.Equipment().Create(ctx, &equipment.Equipment{ID: "e1", Tag: "V-101", Class: equipment.ClassVessels, Thickness: 1, YearCommissioned: 2000, FLOC: &floc}))
	require.NoError(t, store.Equipment().Create(ctx, &equipment.Equipment{ID: "e2", Tag: "P-201", Class: equipment.ClassPiping, Thickness: 1, YearCommissioned: 2010}))
	require.NoError(t, store.Analyses().Create(ctx, &rbi.Analysis{
		ID:                      "a1",
		EquipmentID:             "e1",
		EquipmentTag:            "V-101",
		AnalysisDate:            now,
		DamageMechanisms:        []string{"Uniform Corrosion", "Creep"},
		POFValue:                0.32625,
		POFCategory:             rbi.CategoryMediumLow,
		COFTotal:                25500,
		COFCategory:             rbi.CategoryMediumLow,
		RiskValue:               8319.375,
		RiskCategory:            rbi.CategoryMediumLow,
		InspectionIntervalYears: 4,
		NextInspectionDate:      now.AddDate(4, 0, 0),
		RecommendedNDTMethods:   []string{"AUT", "UT", "VT"},
	}, &inspections.Schedule{ID: "s1"}))

	return &Service{Equipment: store.Equipment(), Analyses: store.Analyses(), Clock: application.FixedClock{T: now}}
}

func TestExportCSV(t *testing.T) {
	svc := newService(t)
	data, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])

	// sorted by tag: P-201 has no analysis
	assert.Equal(t, "P-201", rows[1][0])
	assert.Equal(t, "", rows[1][7])

	assert.Equal(t, "V-101", rows[2][0])
	assert.Equal(t, "U1-CDU", rows[2][3])
	assert.Equal(t, "a1", rows[2][7])
	assert.Equal(t, "Uniform Corrosion; Creep", rows[2][9])
	assert.Equal(t, "0.32625", rows[2][10])
	assert.Equal(t, "Medium-Low", rows[2][18])
	assert.Equal(t, "2029-06-15", rows[2][20])
	for _, r := range rows {
		assert.Len(t, r, len(header))
	}
}

func TestPublish(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Publish(ctx)
	assert.ErrorIs(t, err, fault.ErrNotConfigured)

	store := &fakeStore{}
	svc.Artifacts = store
	url, err := svc.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reports/rbi_analysis_export_20250615_090500.csv", store.key)
	assert.Equal(t, "text/csv", store.contentType)
	assert.Equal(t, "http://minio.local/rbi/"+store.key, url)
	assert.NotEmpty(t, store.body)

	svc.Artifacts = &fakeStore{err: errors.New("bucket gone")}
	_, err = svc.Publish(ctx)
	assert.ErrorIs(t, err, fault.ErrStorage)
}
