package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/ai/prompt"
)

// Model is reported for narratives written without a language model.
const Model = "local-rules"

// Narrator writes rule-based commentary with the same JSON shape the LLM
// prompt asks for. It is used when no API key is configured.
type Narrator struct{}

func (Narrator) Narrate(_ context.Context, a *rbi.Analysis) (string, string, error) {
	b, err := json.Marshal(Compose(a))
	if err != nil {
		return "", "", err
	}
	return string(b), Model, nil
}

// Compose derives drivers and actions from the analysis fields alone.
func Compose(a *rbi.Analysis) prompt.Narrative {
	n := prompt.Narrative{
		EquipmentTag:    a.EquipmentTag,
		RiskCategory:    a.RiskCategory.String(),
		KeyDrivers:      []string{},
		Recommendations: []string{},
		Caveats:         []string{},
	}

	n.Summary = fmt.Sprintf("%s is ranked %s risk (POF %.3f %s, COF $%.0f %s). Re-inspect within %d year(s), by %s.",
		a.EquipmentTag, a.RiskCategory, a.POFValue, a.POFCategory, a.COFTotal, a.COFCategory,
		a.InspectionIntervalYears, a.NextInspectionDate.Format("2006-01-02"))

	if len(a.DamageMechanisms) > 1 {
		n.KeyDrivers = append(n.KeyDrivers, fmt.Sprintf("%d concurrent damage mechanisms: %s",
			len(a.DamageMechanisms), strings.Join(a.DamageMechanisms, ", ")))
	} else if len(a.DamageMechanisms) == 1 {
		n.KeyDrivers = append(n.KeyDrivers, "damage mechanism: "+a.DamageMechanisms[0])
	}
	if a.COFTotal > 0 {
		name, v := "asset", a.COFAsset
		if a.COFHSE > v {
			name, v = "health and safety", a.COFHSE
		}
		if a.COFEnv > v {
			name, v = "environmental", a.COFEnv
		}
		n.KeyDrivers = append(n.KeyDrivers, fmt.Sprintf("%s consequence is %.0f%% of total COF", name, 100*v/a.COFTotal))
	}

	if len(a.RecommendedNDTMethods) > 0 {
		n.Recommendations = append(n.Recommendations,
			"apply "+strings.Join(a.RecommendedNDTMethods, ", ")+" at the next inspection")
	}
	switch a.RiskCategory {
	case rbi.CategoryHigh, rbi.CategoryMediumHigh:
		n.Recommendations = append(n.Recommendations, "review operating envelope and consider on-stream monitoring between inspections")
	case rbi.CategoryLow:
		n.Recommendations = append(n.Recommendations, "maintain current inspection plan; confirm mechanism screening at next revalidation")
	}
	if a.POFCategory >= rbi.CategoryMedium {
		n.Recommendations = append(n.Recommendations, "establish corrosion or crack growth rates from the next inspection to refine POF")
	}

	n.Caveats = append(n.Caveats, a.DataQualityWarnings...)
	return n
}
