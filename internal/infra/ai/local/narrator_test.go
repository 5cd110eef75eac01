package local

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/infra/ai/prompt"
)

func sampleAnalysis() *rbi.Analysis {
	return &rbi.Analysis{
		EquipmentTag:            "V-101",
		AnalysisDate:            time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		POFValue:                0.65,
		POFCategory:             rbi.CategoryMediumHigh,
		COFAsset:                7500,
		COFHSE:                  10000,
		COFEnv:                  8000,
		COFTotal:                25500,
		COFCategory:             rbi.CategoryMediumLow,
		RiskValue:               16575,
		RiskCategory:            rbi.CategoryMediumLow,
		InspectionIntervalYears: 4,
		RecommendedNDTMethods:   []string{"AUT", "UT", "VT"},
		DamageMechanisms:        []string{"Uniform Corrosion", "Creep"},
		NextInspectionDate:      time.Date(2029, 6, 15, 0, 0, 0, 0, time.UTC),
		DataQualityWarnings:     []string{"operating pressure 160.0 psi exceeds design pressure 150.0 psi"},
	}
}

func TestNarrateProducesSchemaJSON(t *testing.T) {
	text, model, err := Narrator{}.Narrate(context.Background(), sampleAnalysis())
	require.NoError(t, err)
	assert.Equal(t, Model, model)

	var n prompt.Narrative
	require.NoError(t, json.Unmarshal([]byte(text), &n))
	assert.Equal(t, "V-101", n.EquipmentTag)
	assert.Equal(t, "Medium-Low", n.RiskCategory)
	assert.Contains(t, n.Summary, "2029-06-15")
	assert.Contains(t, n.KeyDrivers[1], "health and safety")
	assert.Len(t, n.Caveats, 1)
	assert.Contains(t, n.Recommendations[0], "AUT, UT, VT")
}

func TestUserPromptIncludesScores(t *testing.T) {
	p := prompt.UserPrompt(sampleAnalysis())
	assert.Contains(t, p, "POF: 0.650 (Medium-High)")
	assert.Contains(t, p, "total $25500 (Medium-Low)")
	assert.Contains(t, p, "Data quality warnings")
	assert.Contains(t, prompt.SystemPrompt(), "key_drivers")
}
