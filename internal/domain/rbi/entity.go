package rbi

import (
	"math"
	"strings"
	"time"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
)

// AnalysisID identifier type
type AnalysisID string

// ProductType enum
type ProductType string

const (
	ProductFlammable    ProductType = "flammable"
	ProductToxic        ProductType = "toxic"
	ProductNonHazardous ProductType = "non-hazardous"
)

func (p ProductType) Valid() bool {
	_, ok := products[p]
	return ok
}

// Input is a transient analysis request.
type Input struct {
	EquipmentID          string      `json:"equipment_id"`
	DamageMechanisms     []string    `json:"damage_mechanisms"`
	FlammableCoefficient float64     `json:"flammable_coefficient"`
	InventoryMass        float64     `json:"inventory_mass"`
	MaterialCostPerUnit  float64     `json:"material_cost_per_unit"`
	ProductType          ProductType `json:"product_type"`
}

// Validate checks field ranges. Catalog membership is checked by the engine.
func (in Input) Validate() error {
	if strings.TrimSpace(in.EquipmentID) == "" {
		return fault.InvalidInput("equipment_id is required")
	}
	if len(in.DamageMechanisms) == 0 {
		return fault.InvalidInput("at least one damage mechanism is required")
	}
	if !finite(in.FlammableCoefficient) || in.FlammableCoefficient < 0 || in.FlammableCoefficient > 1 {
		return fault.InvalidInput("flammable_coefficient must be within [0,1], got %v", in.FlammableCoefficient)
	}
	if !finite(in.InventoryMass) || in.InventoryMass <= 0 {
		return fault.InvalidInput("inventory_mass must be greater than 0, got %v", in.InventoryMass)
	}
	if !finite(in.MaterialCostPerUnit) || in.MaterialCostPerUnit < 0 {
		return fault.InvalidInput("material_cost_per_unit must not be negative, got %v", in.MaterialCostPerUnit)
	}
	if !in.ProductType.Valid() {
		return fault.InvalidInput("product_type must be one of flammable, toxic, non-hazardous, got %q", in.ProductType)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Analysis is an immutable RBI result. A new analysis is always a new record.
type Analysis struct {
	ID                      AnalysisID  `json:"id"`
	EquipmentID             string      `json:"equipment_id"`
	EquipmentTag            string      `json:"equipment_tag"`
	AnalysisDate            time.Time   `json:"analysis_date"`
	POFValue                float64     `json:"pof_value"`
	POFCategory             Category    `json:"pof_category"`
	COFAsset                float64     `json:"cof_asset"`
	COFHSE                  float64     `json:"cof_hse"`
	COFEnv                  float64     `json:"cof_env"`
	COFTotal                float64     `json:"cof_total"`
	COFCategory             Category    `json:"cof_category"`
	RiskValue               float64     `json:"risk_value"`
	RiskCategory            Category    `json:"risk_category"`
	InspectionIntervalYears int         `json:"inspection_interval_years"`
	RecommendedNDTMethods   []string    `json:"recommended_ndt_methods"`
	DamageMechanisms        []string    `json:"damage_mechanisms"`
	NextInspectionDate      time.Time   `json:"next_inspection_date"`
	FlammableCoefficient    float64     `json:"flammable_coefficient"`
	InventoryMass           float64     `json:"inventory_mass"`
	MaterialCostPerUnit     float64     `json:"material_cost_per_unit"`
	ProductType             ProductType `json:"product_type"`
	DataQualityWarnings     []string    `json:"data_quality_warnings,omitempty"`
}
