package advisory

import "time"

// NarrativeID identifier type
type NarrativeID string

// Narrative is engineering commentary generated for one analysis. It is
// stored for auditing next to the analysis it explains.
type Narrative struct {
	ID         NarrativeID `json:"id"`
	AnalysisID string      `json:"analysis_id"`
	Model      string      `json:"model"`
	Text       string      `json:"text"`
	CreatedAt  time.Time   `json:"created_at"`
}
