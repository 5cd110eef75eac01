package dashboard

import (
	"context"
	"strconv"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// Service aggregates the registry, analyses and schedules for the
// dashboard. It only reads.
type Service struct {
	Equipment   equipment.Repository
	Analyses    rbi.Repository
	Inspections inspections.Repository
	Clock       application.Clock
}

// Stats is the dashboard summary. Risk figures use the latest analysis of
// each equipment item only.
type Stats struct {
	TotalEquipment     int            `json:"total_equipment"`
	TotalAnalyses      int            `json:"total_analyses"`
	OverdueInspections int            `json:"overdue_inspections"`
	HighRiskEquipment  int            `json:"high_risk_equipment"`
	EquipmentByClass   map[string]int `json:"equipment_by_class"`
	RiskDistribution   map[string]int `json:"risk_distribution"`
	InspectionsByYear  map[string]int `json:"inspections_by_year"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	eqs, err := s.Equipment.List(ctx)
	if err != nil {
		return Stats{}, fault.Storage("list equipment", err)
	}
	analyses, err := s.Analyses.List(ctx, 0)
	if err != nil {
		return Stats{}, fault.Storage("list analyses", err)
	}
	scheds, err := s.Inspections.List(ctx)
	if err != nil {
		return Stats{}, fault.Storage("list inspection schedules", err)
	}

	st := Stats{
		TotalEquipment:    len(eqs),
		TotalAnalyses:     len(analyses),
		EquipmentByClass:  map[string]int{},
		RiskDistribution:  map[string]int{},
		InspectionsByYear: map[string]int{},
	}
	for _, c := range equipment.Classes {
		st.EquipmentByClass[string(c)] = 0
	}
	for _, c := range rbi.Categories {
		st.RiskDistribution[c.String()] = 0
	}
	for _, e := range eqs {
		st.EquipmentByClass[string(e.Class)]++
	}

	// List is newest first, so the first hit per equipment is its latest.
	latest := map[string]*rbi.Analysis{}
	for _, a := range analyses {
		if _, ok := latest[a.EquipmentID]; !ok {
			latest[a.EquipmentID] = a
		}
	}
	for _, a := range latest {
		st.RiskDistribution[a.RiskCategory.String()]++
		if a.RiskCategory >= rbi.CategoryMediumHigh {
			st.HighRiskEquipment++
		}
	}

	now := s.Clock.Now()
	for _, sc := range scheds {
		if sc.Overdue(now) {
			st.OverdueInspections++
		}
		st.InspectionsByYear[strconv.Itoa(sc.ScheduledDate.Year())]++
	}
	return st, nil
}
