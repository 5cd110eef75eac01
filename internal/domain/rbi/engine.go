package rbi

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/mechanisms"
)

// POF calibration.
const (
	// AgeReferenceYears is the age at which the age factor reaches 2.
	AgeReferenceYears = 20.0
	// MaxAgeFactor caps the age factor (reached at 30 years).
	MaxAgeFactor = 2.5
	// SeverityBase is added to the operating ratio while within design limits.
	SeverityBase = 0.5
	// OverLimitSeverity applies once operation exceeds a design limit.
	OverLimitSeverity = 2.0
)

// COF calibration.
const (
	// GeometryReferenceVolume (ft³) is the volume at which the geometry
	// factor saturates at 2.
	GeometryReferenceVolume = 1000.0
)

// Engine computes RBI analyses against an immutable catalog snapshot.
// It holds no other state and is safe for concurrent use.
type Engine struct {
	catalog mechanisms.Catalog
}

func NewEngine(catalog mechanisms.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Compute runs the full analysis for eq at time now. The returned analysis
// has no ID; the caller assigns one when persisting it.
func (e *Engine) Compute(eq *equipment.Equipment, in Input, now time.Time) (*Analysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, fault.NotFound("equipment %s not found", in.EquipmentID)
	}
	if !eq.Class.Valid() {
		return nil, fault.InvalidInput("equipment %s has unknown class %q", eq.Tag, eq.Class)
	}
	if eq.Thickness <= 0 {
		return nil, fault.InvalidInput("equipment %s has non-positive thickness %v", eq.Tag, eq.Thickness)
	}

	selected, err := e.resolve(in.DamageMechanisms)
	if err != nil {
		return nil, err
	}

	age := EquipmentAge(eq, now)
	severity := SeverityFactor(eq)
	contributions := make([]float64, 0, len(selected))
	for _, dm := range selected {
		contributions = append(contributions, Contribution(dm.BaseWeight, age, severity))
	}
	pof := CombinePOF(contributions)

	asset := AssetCOF(eq, in.InventoryMass, in.MaterialCostPerUnit)
	hse := HSECOF(in.ProductType, in.FlammableCoefficient, in.InventoryMass)
	env := EnvironmentalCOF(in.ProductType, in.InventoryMass)
	total := asset + hse + env

	risk := pof * total
	for _, v := range []float64{asset, hse, env, total, risk} {
		if !finite(v) {
			return nil, fault.InvalidInput("inputs too large: consequence or risk score is not finite")
		}
	}
	riskCat := RiskBands.Classify(risk)
	interval, err := InspectionInterval(riskCat)
	if err != nil {
		return nil, err
	}
	ndt, err := RecommendNDT(selected)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(selected))
	for _, dm := range selected {
		names = append(names, dm.Name)
	}

	analysisDate := now.UTC()
	return &Analysis{
		EquipmentID:             string(eq.ID),
		EquipmentTag:            eq.Tag,
		AnalysisDate:            analysisDate,
		POFValue:                pof,
		POFCategory:             POFBands.Classify(pof),
		COFAsset:                asset,
		COFHSE:                  hse,
		COFEnv:                  env,
		COFTotal:                total,
		COFCategory:             COFBands.Classify(total),
		RiskValue:               risk,
		RiskCategory:            riskCat,
		InspectionIntervalYears: interval,
		RecommendedNDTMethods:   ndt,
		DamageMechanisms:        names,
		NextInspectionDate:      AddYears(analysisDate, interval),
		FlammableCoefficient:    in.FlammableCoefficient,
		InventoryMass:           in.InventoryMass,
		MaterialCostPerUnit:     in.MaterialCostPerUnit,
		ProductType:             in.ProductType,
		DataQualityWarnings:     DataQualityWarnings(eq),
	}, nil
}

// resolve looks up every requested name, dropping duplicates while keeping
// first-seen order. Unknown names fail the whole request.
func (e *Engine) resolve(names []string) ([]mechanisms.DamageMechanism, error) {
	seen := make(map[string]bool, len(names))
	var out []mechanisms.DamageMechanism
	var unknown []string
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		dm, ok := e.catalog.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !dm.Category.Valid() {
			return nil, fault.InvalidInput("damage mechanism %q has unknown category %q", name, dm.Category)
		}
		out = append(out, dm)
	}
	if len(unknown) > 0 {
		return nil, fault.InvalidInput("unknown damage mechanisms: %s", strings.Join(unknown, ", "))
	}
	if len(out) == 0 {
		return nil, fault.InvalidInput("at least one damage mechanism is required")
	}
	return out, nil
}

// EquipmentAge is whole years in service at now, never negative.
func EquipmentAge(eq *equipment.Equipment, now time.Time) int {
	age := now.UTC().Year() - eq.YearCommissioned
	if age < 0 {
		return 0
	}
	return age
}

// AgeFactor grows linearly with age and is capped at MaxAgeFactor.
func AgeFactor(age int) float64 {
	return math.Min(1+float64(age)/AgeReferenceYears, MaxAgeFactor)
}

// OperatingRatio is the larger of the pressure and temperature ratios.
// ok is false when a design value is not positive and the ratio is undefined.
func OperatingRatio(eq *equipment.Equipment) (r float64, ok bool) {
	if eq.DesignPressure <= 0 || eq.DesignTemperature <= 0 {
		return 0, false
	}
	pr := eq.OperatingPressure / eq.DesignPressure
	tr := eq.OperatingTemperature / eq.DesignTemperature
	return math.Max(pr, tr), true
}

// SeverityFactor is SeverityBase + ratio inside design limits and the flat
// OverLimitSeverity penalty beyond them.
func SeverityFactor(eq *equipment.Equipment) float64 {
	r, ok := OperatingRatio(eq)
	if !ok || r > 1 {
		return OverLimitSeverity
	}
	if r < 0 {
		r = 0
	}
	return SeverityBase + r
}

// Contribution is one mechanism's standalone failure probability in [0,1].
func Contribution(baseWeight float64, age int, severity float64) float64 {
	c := baseWeight * AgeFactor(age) * severity
	switch {
	case c < 0 || math.IsNaN(c):
		return 0
	case c > 1:
		return 1
	}
	return c
}

// CombinePOF treats mechanisms as independent failure modes and combines
// them by probabilistic OR: 1 − ∏(1 − cᵢ). The result stays in [0,1] and
// never decreases when a mechanism is added.
func CombinePOF(contributions []float64) float64 {
	survive := 1.0
	for _, c := range contributions {
		survive *= 1 - math.Min(math.Max(c, 0), 1)
	}
	return 1 - survive
}

// GeometryFactor scales asset damage cost with contained volume.
func GeometryFactor(eq *equipment.Equipment) float64 {
	v, ok := eq.EffectiveVolume()
	if !ok {
		return 1
	}
	return 1 + math.Min(v/GeometryReferenceVolume, 1)
}

// AssetCOF is the replacement and damage cost proxy.
func AssetCOF(eq *equipment.Equipment, inventoryMass, materialCost float64) float64 {
	return inventoryMass * materialCost * classMultiplier[eq.Class] * GeometryFactor(eq)
}

// HSECOF is the injury and safety exposure cost.
func HSECOF(p ProductType, flammableCoefficient, inventoryMass float64) float64 {
	f := products[p]
	return inventoryMass * f.hseUnitCost * (flammableCoefficient + f.toxicExposure)
}

// EnvironmentalCOF is the cleanup cost proxy.
func EnvironmentalCOF(p ProductType, inventoryMass float64) float64 {
	return inventoryMass * products[p].envUnitCost
}

// RecommendNDT unions the techniques of every selected mechanism's category.
// The result is sorted so repeated calls agree.
func RecommendNDT(selected []mechanisms.DamageMechanism) ([]string, error) {
	set := make(map[string]struct{})
	for _, dm := range selected {
		methods, err := NDTMethods(dm.Category)
		if err != nil {
			return nil, err
		}
		for _, m := range methods {
			set[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// DataQualityWarnings flags operation above design values. These never fail
// an analysis.
func DataQualityWarnings(eq *equipment.Equipment) []string {
	var w []string
	if eq.DesignPressure > 0 && eq.OperatingPressure > eq.DesignPressure {
		w = append(w, fmt.Sprintf("operating pressure %.1f psi exceeds design pressure %.1f psi", eq.OperatingPressure, eq.DesignPressure))
	}
	if eq.DesignTemperature > 0 && eq.OperatingTemperature > eq.DesignTemperature {
		w = append(w, fmt.Sprintf("operating temperature %.1f °F exceeds design temperature %.1f °F", eq.OperatingTemperature, eq.DesignTemperature))
	}
	if eq.DesignPressure <= 0 || eq.DesignTemperature <= 0 {
		w = append(w, "design pressure or temperature missing; operating severity assumed over limit")
	}
	return w
}

// AddYears adds whole calendar years, keeping month and day. Feb 29 lands
// on Feb 28 in non-leap target years.
func AddYears(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	y += years
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// ScheduleFor builds the inspection schedule entry implied by a.
func ScheduleFor(a *Analysis, class equipment.Class) (*inspections.Schedule, error) {
	typ, err := InspectionType(class)
	if err != nil {
		return nil, err
	}
	methods := make([]string, len(a.RecommendedNDTMethods))
	copy(methods, a.RecommendedNDTMethods)
	return &inspections.Schedule{
		AnalysisID:    string(a.ID),
		EquipmentTag:  a.EquipmentTag,
		Type:          typ,
		ScheduledDate: a.NextInspectionDate,
		NDTMethods:    methods,
		Status:        inspections.StatusScheduled,
		CreatedAt:     a.AnalysisDate,
	}, nil
}
