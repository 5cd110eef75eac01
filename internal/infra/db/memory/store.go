// Package memory keeps every repository in process memory. It backs the
// "memory" database driver used for local runs and tests.
package memory

import (
	"sync"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// Store is the shared state behind the repositories. One mutex guards all
// maps so that an analysis and its schedule land together.
type Store struct {
	mu         sync.RWMutex
	equipment  map[equipment.ID]*equipment.Equipment
	analyses   map[rbi.AnalysisID]*rbi.Analysis
	schedules  map[inspections.ScheduleID]*inspections.Schedule
	narratives map[advisory.NarrativeID]*advisory.Narrative
}

func NewStore() *Store {
	return &Store{
		equipment:  map[equipment.ID]*equipment.Equipment{},
		analyses:   map[rbi.AnalysisID]*rbi.Analysis{},
		schedules:  map[inspections.ScheduleID]*inspections.Schedule{},
		narratives: map[advisory.NarrativeID]*advisory.Narrative{},
	}
}

func (s *Store) Equipment() *EquipmentRepository { return &EquipmentRepository{s: s} }
func (s *Store) Analyses() *AnalysisRepository { return &AnalysisRepository{s: s} }
func (s *Store) Schedules() *ScheduleRepository { return &ScheduleRepository{s: s} }
func (s *Store) Narratives() *NarrativeRepository { return &NarrativeRepository{s: s} }

// Ping satisfies the health checker.
func (s *Store) Ping() error { return nil }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneEquipment(e *equipment.Equipment) *equipment.Equipment {
	c := *e
	c.Diameter = cloneFloat(e.Diameter)
	c.Length = cloneFloat(e.Length)
	c.Volume = cloneFloat(e.Volume)
	c.FLOC = cloneString(e.FLOC)
	c.CorrosionLoop = cloneString(e.CorrosionLoop)
	return &c
}

func cloneAnalysis(a *rbi.Analysis) *rbi.Analysis {
	c := *a
	c.RecommendedNDTMethods = cloneStrings(a.RecommendedNDTMethods)
	c.DamageMechanisms = cloneStrings(a.DamageMechanisms)
	c.DataQualityWarnings = cloneStrings(a.DataQualityWarnings)
	return &c
}

func cloneSchedule(sc *inspections.Schedule) *inspections.Schedule {
	c := *sc
	c.NDTMethods = cloneStrings(sc.NDTMethods)
	c.Findings = cloneString(sc.Findings)
	if sc.CompletedDate != nil {
		t := *sc.CompletedDate
		c.CompletedDate = &t
	}
	return &c
}
