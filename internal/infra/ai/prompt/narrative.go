package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

// SystemPrompt provides strict directions and schema for JSON output.
func SystemPrompt() string {
	return `You are a senior fixed-equipment integrity engineer reviewing a quantitative Risk-Based Inspection (API 580/581) result. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Do not recompute or contradict the supplied scores; explain them.
- key_drivers names the inputs that dominate probability or consequence of failure.
- recommendations are concrete inspection or mitigation actions, at most five.
- caveats lists data quality concerns; use an empty array when there are none.

Schema (example with empty values):
{
  "equipment_tag": "<string>",
  "risk_category": "<Low|Medium-Low|Medium|Medium-High|High>",
  "summary": "<string>",
  "key_drivers": ["<string>"],
  "recommendations": ["<string>"],
  "caveats": ["<string>"]
}`
}

// UserPrompt renders the analysis as a compact fact sheet.
func UserPrompt(a *rbi.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Equipment: %s\n", a.EquipmentTag)
	fmt.Fprintf(&b, "Analysis date: %s\n", a.AnalysisDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Damage mechanisms: %s\n", strings.Join(a.DamageMechanisms, ", "))
	fmt.Fprintf(&b, "POF: %.3f (%s)\n", a.POFValue, a.POFCategory)
	fmt.Fprintf(&b, "COF: asset $%.0f, HSE $%.0f, environmental $%.0f, total $%.0f (%s)\n",
		a.COFAsset, a.COFHSE, a.COFEnv, a.COFTotal, a.COFCategory)
	fmt.Fprintf(&b, "Risk: %.1f (%s)\n", a.RiskValue, a.RiskCategory)
	fmt.Fprintf(&b, "Product: %s, flammable coefficient %.2f, inventory %.0f\n",
		a.ProductType, a.FlammableCoefficient, a.InventoryMass)
	fmt.Fprintf(&b, "Interval: %d years, next inspection %s\n",
		a.InspectionIntervalYears, a.NextInspectionDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Recommended NDT: %s\n", strings.Join(a.RecommendedNDTMethods, ", "))
	if len(a.DataQualityWarnings) > 0 {
		fmt.Fprintf(&b, "Data quality warnings: %s\n", strings.Join(a.DataQualityWarnings, "; "))
	}
	b.WriteString("Respond with the JSON per schema.")
	return b.String()
}

// Narrative is the structure the system prompt asks for.
type Narrative struct {
	EquipmentTag    string   `json:"equipment_tag"`
	RiskCategory    string   `json:"risk_category"`
	Summary         string   `json:"summary"`
	KeyDrivers      []string `json:"key_drivers"`
	Recommendations []string `json:"recommendations"`
	Caveats         []string `json:"caveats"`
}
