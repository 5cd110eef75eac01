package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/reports"
)

const contentTypeCSV = "text/csv"

// Service renders the registry and analyses as a flat export.
// Artifacts may be nil; Publish then reports ErrNotConfigured.
type Service struct {
	Equipment equipment.Repository
	Analyses  rbi.Repository
	Artifacts domain.ArtifactStore
	Clock     application.Clock
}

var header = []string{
	"equipment_tag", "equipment_class", "location", "floc", "corrosion_loop",
	"material", "year_commissioned", "analysis_id", "analysis_date",
	"damage_mechanisms", "pof_value", "pof_category", "cof_asset", "cof_hse",
	"cof_env", "cof_total", "cof_category", "risk_value", "risk_category",
	"inspection_interval_years", "next_inspection_date", "recommended_ndt_methods",
}

// ExportCSV writes one row per analysis, newest first within each tag.
// Equipment without analyses gets one row with the analysis columns empty.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	eqs, err := s.Equipment.List(ctx)
	if err != nil {
		return nil, fault.Storage("list equipment", err)
	}
	analyses, err := s.Analyses.List(ctx, 0)
	if err != nil {
		return nil, fault.Storage("list analyses", err)
	}

	byEquipment := map[string][]*rbi.Analysis{}
	for _, a := range analyses {
		byEquipment[a.EquipmentID] = append(byEquipment[a.EquipmentID], a)
	}
	sort.SliceStable(eqs, func(i, j int) bool { return eqs[i].Tag < eqs[j].Tag })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range eqs {
		list := byEquipment[string(e.ID)]
		if len(list) == 0 {
			if err := w.Write(equipmentColumns(e, len(header))); err != nil {
				return nil, err
			}
			continue
		}
		for _, a := range list {
			if err := w.Write(append(equipmentColumns(e, 0), analysisColumns(a)...)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func equipmentColumns(e *equipment.Equipment, width int) []string {
	row := []string{
		e.Tag, string(e.Class), e.Location, deref(e.FLOC), deref(e.CorrosionLoop),
		e.Material, strconv.Itoa(e.YearCommissioned),
	}
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func analysisColumns(a *rbi.Analysis) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		string(a.ID),
		a.AnalysisDate.Format("2006-01-02"),
		strings.Join(a.DamageMechanisms, "; "),
		f(a.POFValue), a.POFCategory.String(),
		f(a.COFAsset), f(a.COFHSE), f(a.COFEnv), f(a.COFTotal), a.COFCategory.String(),
		f(a.RiskValue), a.RiskCategory.String(),
		strconv.Itoa(a.InspectionIntervalYears),
		a.NextInspectionDate.Format("2006-01-02"),
		strings.Join(a.RecommendedNDTMethods, "; "),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Publish uploads the current export and returns its URL.
func (s *Service) Publish(ctx context.Context) (string, error) {
	if s.Artifacts == nil {
		return "", fault.NotConfigured("artifact storage is not configured")
	}
	data, err := s.ExportCSV(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("reports/rbi_analysis_export_%s.csv", s.Clock.Now().Format("20060102_150405"))
	url, err := s.Artifacts.Upload(ctx, key, contentTypeCSV, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fault.Storage("upload report", err)
	}
	return url, nil
}
