package memory

import (
	"context"
	"sort"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

type EquipmentRepository struct{ s *Store }

func (r *EquipmentRepository) tagTaken(tag string, except equipment.ID) bool {
	for id, e := range r.s.equipment {
		if id != except && e.Tag == tag {
			return true
		}
	}
	return false
}

func (r *EquipmentRepository) Create(_ context.Context, e *equipment.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[e.ID]; ok {
		return fault.Conflict("equipment %s already exists", e.ID)
	}
	if r.tagTaken(e.Tag, "") {
		return fault.Conflict("equipment tag %s already exists", e.Tag)
	}
	r.s.equipment[e.ID] = cloneEquipment(e)
	return nil
}

func (r *EquipmentRepository) Update(_ context.Context, e *equipment.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[e.ID]; !ok {
		return fault.NotFound("equipment %s not found", e.ID)
	}
	if r.tagTaken(e.Tag, e.ID) {
		return fault.Conflict("equipment tag %s already exists", e.Tag)
	}
	r.s.equipment[e.ID] = cloneEquipment(e)
	return nil
}

func (r *EquipmentRepository) Get(_ context.Context, id equipment.ID) (*equipment.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.equipment[id]
	if !ok {
		return nil, fault.NotFound("equipment %s not found", id)
	}
	return cloneEquipment(e), nil
}

// List is ordered by tag.
func (r *EquipmentRepository) List(_ context.Context) ([]*equipment.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*equipment.Equipment, 0, len(r.s.equipment))
	for _, e := range r.s.equipment {
		out = append(out, cloneEquipment(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}

func (r *EquipmentRepository) Delete(_ context.Context, id equipment.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipment[id]; !ok {
		return fault.NotFound("equipment %s not found", id)
	}
	delete(r.s.equipment, id)
	return nil
}

func (r *EquipmentRepository) AssignFLOC(_ context.Context, id equipment.ID, floc, corrosionLoop *string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.equipment[id]
	if !ok {
		return fault.NotFound("equipment %s not found", id)
	}
	e.FLOC = cloneString(floc)
	e.CorrosionLoop = cloneString(corrosionLoop)
	e.UpdatedAt = updatedAt
	return nil
}

type AnalysisRepository struct{ s *Store }

// Create stores the analysis and its schedule under one lock. Any conflict
// is detected before either is written.
func (r *AnalysisRepository) Create(_ context.Context, a *rbi.Analysis, sc *inspections.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.analyses[a.ID]; ok {
		return fault.Conflict("analysis %s already exists", a.ID)
	}
	if sc != nil {
		if _, ok := r.s.schedules[sc.ID]; ok {
			return fault.Conflict("inspection schedule %s already exists", sc.ID)
		}
	}
	r.s.analyses[a.ID] = cloneAnalysis(a)
	if sc != nil {
		r.s.schedules[sc.ID] = cloneSchedule(sc)
	}
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id rbi.AnalysisID) (*rbi.Analysis, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.analyses[id]
	if !ok {
		return nil, fault.NotFound("analysis %s not found", id)
	}
	return cloneAnalysis(a), nil
}

func (r *AnalysisRepository) List(_ context.Context, limit int) ([]*rbi.Analysis, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*rbi.Analysis, 0, len(r.s.analyses))
	for _, a := range r.s.analyses {
		out = append(out, cloneAnalysis(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnalysisDate.Equal(out[j].AnalysisDate) {
			return out[i].AnalysisDate.After(out[j].AnalysisDate)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type ScheduleRepository struct{ s *Store }

// List is ordered by scheduled date, soonest first.
func (r *ScheduleRepository) List(_ context.Context) ([]*inspections.Schedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*inspections.Schedule, 0, len(r.s.schedules))
	for _, sc := range r.s.schedules {
		out = append(out, cloneSchedule(sc))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ScheduleRepository) Get(_ context.Context, id inspections.ScheduleID) (*inspections.Schedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sc, ok := r.s.schedules[id]
	if !ok {
		return nil, fault.NotFound("inspection schedule %s not found", id)
	}
	return cloneSchedule(sc), nil
}

func (r *ScheduleRepository) Complete(_ context.Context, id inspections.ScheduleID, completedAt time.Time, findings *string) (*inspections.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.schedules[id]
	if !ok {
		return nil, fault.NotFound("inspection schedule %s not found", id)
	}
	if sc.Status != inspections.StatusScheduled {
		return nil, fault.Conflict("inspection schedule %s is already %s", id, sc.Status)
	}
	t := completedAt
	sc.Status = inspections.StatusCompleted
	sc.CompletedDate = &t
	sc.Findings = cloneString(findings)
	return cloneSchedule(sc), nil
}

type NarrativeRepository struct{ s *Store }

func (r *NarrativeRepository) Save(_ context.Context, n *advisory.Narrative) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.narratives[n.ID]; ok {
		return fault.Conflict("narrative %s already exists", n.ID)
	}
	c := *n
	r.s.narratives[n.ID] = &c
	return nil
}

func (r *NarrativeRepository) LatestByAnalysis(_ context.Context, analysisID string) (*advisory.Narrative, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *advisory.Narrative
	for _, n := range r.s.narratives {
		if n.AnalysisID != analysisID {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	if latest == nil {
		return nil, fault.NotFound("no narrative for analysis %s", analysisID)
	}
	c := *latest
	return &c, nil
}
