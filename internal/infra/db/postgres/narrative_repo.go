package postgres

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/advisory"
)

type NarrativeRepository struct {
	db *sql.DB
}

func NewNarrativeRepository(db *sql.DB) *NarrativeRepository {
	return &NarrativeRepository{db: db}
}

// Save insert narrative hasil AI
func (r *NarrativeRepository) Save(ctx context.Context, n *domain.Narrative) error {
	const q = `
INSERT INTO analysis_narratives (id, analysis_id, model, text, created_at)
VALUES ($1,$2,$3,$4,$5);
`
	_, err := r.db.ExecContext(ctx, q, n.ID, n.AnalysisID, n.Model, n.Text, n.CreatedAt)
	return mapErr("save narrative", err)
}

func (r *NarrativeRepository) LatestByAnalysis(ctx context.Context, analysisID string) (*domain.Narrative, error) {
	const q = `
SELECT id, analysis_id, model, text, created_at
FROM analysis_narratives
WHERE analysis_id=$1 ORDER BY created_at DESC LIMIT 1;
`
	var n domain.Narrative
	err := r.db.QueryRowContext(ctx, q, analysisID).Scan(&n.ID, &n.AnalysisID, &n.Model, &n.Text, &n.CreatedAt)
	if err != nil {
		return nil, mapErr("narrative for analysis "+analysisID, err)
	}
	return &n, nil
}
