package equipment

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/rbi-inspect/internal/application"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
)

// MinYearCommissioned is the oldest commissioning year accepted.
const MinYearCommissioned = 1900

// Service implements use-cases untuk equipment registry
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// Command is the writable part of an equipment record.
type Command struct {
	Tag                  string       `json:"tag"`
	Description          string       `json:"description"`
	Class                domain.Class `json:"equipment_class"`
	DesignPressure       float64      `json:"design_pressure"`
	DesignTemperature    float64      `json:"design_temperature"`
	OperatingPressure    float64      `json:"operating_pressure"`
	OperatingTemperature float64      `json:"operating_temperature"`
	Material             string       `json:"material"`
	Thickness            float64      `json:"thickness"`
	Diameter             *float64     `json:"diameter,omitempty"`
	Length               *float64     `json:"length,omitempty"`
	Volume               *float64     `json:"volume,omitempty"`
	YearCommissioned     int          `json:"year_commissioned"`
	Location             string       `json:"location"`
}

func (s *Service) validate(cmd Command) error {
	if strings.TrimSpace(cmd.Tag) == "" {
		return fault.InvalidInput("tag is required")
	}
	if !cmd.Class.Valid() {
		return fault.InvalidInput("equipment_class must be one of %v, got %q", domain.Classes, cmd.Class)
	}
	for name, v := range map[string]float64{
		"design_pressure":       cmd.DesignPressure,
		"design_temperature":    cmd.DesignTemperature,
		"operating_pressure":    cmd.OperatingPressure,
		"operating_temperature": cmd.OperatingTemperature,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fault.InvalidInput("%s must be a finite number", name)
		}
	}
	if math.IsNaN(cmd.Thickness) || cmd.Thickness <= 0 {
		return fault.InvalidInput("thickness must be greater than 0, got %v", cmd.Thickness)
	}
	for name, p := range map[string]*float64{"diameter": cmd.Diameter, "length": cmd.Length, "volume": cmd.Volume} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0) {
			return fault.InvalidInput("%s must not be negative", name)
		}
	}
	year := s.Clock.Now().Year()
	if cmd.YearCommissioned < MinYearCommissioned || cmd.YearCommissioned > year {
		return fault.InvalidInput("year_commissioned must be within [%d, %d], got %d", MinYearCommissioned, year, cmd.YearCommissioned)
	}
	return nil
}

func apply(e *domain.Equipment, cmd Command) {
	e.Tag = strings.TrimSpace(cmd.Tag)
	e.Description = cmd.Description
	e.Class = cmd.Class
	e.DesignPressure = cmd.DesignPressure
	e.DesignTemperature = cmd.DesignTemperature
	e.OperatingPressure = cmd.OperatingPressure
	e.OperatingTemperature = cmd.OperatingTemperature
	e.Material = cmd.Material
	e.Thickness = cmd.Thickness
	e.Diameter = cmd.Diameter
	e.Length = cmd.Length
	e.Volume = cmd.Volume
	e.YearCommissioned = cmd.YearCommissioned
	e.Location = cmd.Location
}

func (s *Service) Create(ctx context.Context, cmd Command) (*domain.Equipment, error) {
	if err := s.validate(cmd); err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	e := &domain.Equipment{ID: domain.ID(uuid.NewString()), CreatedAt: now, UpdatedAt: now}
	apply(e, cmd)
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, fault.Storage("create equipment", err)
	}
	return e, nil
}

// Update replaces the writable fields. FLOC assignment is left untouched.
func (s *Service) Update(ctx context.Context, id domain.ID, cmd Command) (*domain.Equipment, error) {
	if err := s.validate(cmd); err != nil {
		return nil, err
	}
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fault.Storage("load equipment", err)
	}
	apply(e, cmd)
	e.UpdatedAt = s.Clock.Now()
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, fault.Storage("update equipment", err)
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Equipment, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fault.Storage("get equipment", err)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Equipment, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fault.Storage("list equipment", err)
	}
	if list == nil {
		list = []*domain.Equipment{}
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id domain.ID) error {
	return fault.Storage("delete equipment", s.Repo.Delete(ctx, id))
}

// AssignFLOC sets or clears the functional location. A corrosion loop
// without a FLOC is dropped.
func (s *Service) AssignFLOC(ctx context.Context, id domain.ID, floc, corrosionLoop *string) (*domain.Equipment, error) {
	floc = trimmed(floc)
	corrosionLoop = trimmed(corrosionLoop)
	if floc == nil {
		corrosionLoop = nil
	}
	if err := s.Repo.AssignFLOC(ctx, id, floc, corrosionLoop, s.Clock.Now()); err != nil {
		return nil, fault.Storage("assign floc", err)
	}
	return s.Get(ctx, id)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// FLOCGroups groups the registry by functional location.
func (s *Service) FLOCGroups(ctx context.Context) (domain.FLOCGroups, error) {
	list, err := s.List(ctx)
	if err != nil {
		return domain.FLOCGroups{}, err
	}
	out := domain.FLOCGroups{Groups: map[string][]*domain.Equipment{}, Unassigned: []*domain.Equipment{}}
	for _, e := range list {
		if e.FLOC == nil {
			out.Unassigned = append(out.Unassigned, e)
			continue
		}
		out.Groups[*e.FLOC] = append(out.Groups[*e.FLOC], e)
	}
	return out, nil
}
