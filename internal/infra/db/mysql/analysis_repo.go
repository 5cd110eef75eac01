package mysql

import (
	"context"
	"database/sql"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, equipment_id, equipment_tag, analysis_date,
       pof_value, pof_category, cof_asset, cof_hse, cof_env, cof_total, cof_category,
       risk_value, risk_category, inspection_interval_years,
       recommended_ndt_methods, damage_mechanisms, next_inspection_date,
       flammable_coefficient, inventory_mass, material_cost_per_unit, product_type,
       data_quality_warnings`

const insertAnalysis = `
INSERT INTO rbi_analyses
(id, equipment_id, equipment_tag, analysis_date,
 pof_value, pof_category, cof_asset, cof_hse, cof_env, cof_total, cof_category,
 risk_value, risk_category, inspection_interval_years,
 recommended_ndt_methods, damage_mechanisms, next_inspection_date,
 flammable_coefficient, inventory_mass, material_cost_per_unit, product_type,
 data_quality_warnings)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);
`

const insertSchedule = `
INSERT INTO inspection_schedules
(id, analysis_id, equipment_tag, inspection_type, scheduled_date,
 ndt_methods, status, completed_date, findings, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);
`

// Create simpan analysis + schedule dalam satu transaksi
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis, s *inspections.Schedule) error {
	ndt, err := encodeList(a.RecommendedNDTMethods)
	if err != nil {
		return mapErr("encode ndt methods", err)
	}
	dms, err := encodeList(a.DamageMechanisms)
	if err != nil {
		return mapErr("encode damage mechanisms", err)
	}
	warnings, err := encodeList(a.DataQualityWarnings)
	if err != nil {
		return mapErr("encode warnings", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("begin analysis tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertAnalysis,
		a.ID, a.EquipmentID, a.EquipmentTag, a.AnalysisDate,
		a.POFValue, a.POFCategory.String(), a.COFAsset, a.COFHSE, a.COFEnv, a.COFTotal, a.COFCategory.String(),
		a.RiskValue, a.RiskCategory.String(), a.InspectionIntervalYears,
		ndt, dms, a.NextInspectionDate,
		a.FlammableCoefficient, a.InventoryMass, a.MaterialCostPerUnit, a.ProductType,
		warnings,
	); err != nil {
		return mapErr("insert analysis", err)
	}

	if s != nil {
		methods, err := encodeList(s.NDTMethods)
		if err != nil {
			return mapErr("encode schedule methods", err)
		}
		if _, err := tx.ExecContext(ctx, insertSchedule,
			s.ID, s.AnalysisID, s.EquipmentTag, s.Type, s.ScheduledDate,
			methods, s.Status, s.CompletedDate, nullString(s.Findings), s.CreatedAt,
		); err != nil {
			return mapErr("insert inspection schedule", err)
		}
	}

	return mapErr("commit analysis", tx.Commit())
}

func scanAnalysis(row scanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var pofCat, cofCat, riskCat, ndt, dms, warnings string
	if err := row.Scan(
		&a.ID, &a.EquipmentID, &a.EquipmentTag, &a.AnalysisDate,
		&a.POFValue, &pofCat, &a.COFAsset, &a.COFHSE, &a.COFEnv, &a.COFTotal, &cofCat,
		&a.RiskValue, &riskCat, &a.InspectionIntervalYears,
		&ndt, &dms, &a.NextInspectionDate,
		&a.FlammableCoefficient, &a.InventoryMass, &a.MaterialCostPerUnit, &a.ProductType,
		&warnings,
	); err != nil {
		return nil, err
	}
	if err := parseCategories([]*domain.Category{&a.POFCategory, &a.COFCategory, &a.RiskCategory}, pofCat, cofCat, riskCat); err != nil {
		return nil, err
	}
	var err error
	if a.RecommendedNDTMethods, err = decodeList(ndt); err != nil {
		return nil, err
	}
	if a.DamageMechanisms, err = decodeList(dms); err != nil {
		return nil, err
	}
	if a.DataQualityWarnings, err = decodeList(warnings); err != nil {
		return nil, err
	}
	if len(a.DataQualityWarnings) == 0 {
		a.DataQualityWarnings = nil
	}
	return &a, nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM rbi_analyses WHERE id=? LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr("analysis "+string(id), err)
	}
	return a, nil
}

// List newest first; limit <= 0 → semua
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM rbi_analyses ORDER BY analysis_date DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q+`;`, args...)
	if err != nil {
		return nil, mapErr("list analyses", err)
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, mapErr("list analyses", err)
		}
		out = append(out, a)
	}
	return out, mapErr("list analyses", rows.Err())
}
