package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
)

type EquipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const equipmentColumns = `id, tag, description, equipment_class,
       design_pressure, design_temperature, operating_pressure, operating_temperature,
       material, thickness, diameter, length, volume, year_commissioned, location,
       floc, corrosion_loop, created_at, updated_at`

func scanEquipment(row scanner) (*domain.Equipment, error) {
	var e domain.Equipment
	var diameter, length, volume sql.NullFloat64
	var floc, loop sql.NullString
	if err := row.Scan(
		&e.ID, &e.Tag, &e.Description, &e.Class,
		&e.DesignPressure, &e.DesignTemperature, &e.OperatingPressure, &e.OperatingTemperature,
		&e.Material, &e.Thickness, &diameter, &length, &volume, &e.YearCommissioned, &e.Location,
		&floc, &loop, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Diameter, e.Length, e.Volume = floatPtr(diameter), floatPtr(length), floatPtr(volume)
	e.FLOC, e.CorrosionLoop = stringPtr(floc), stringPtr(loop)
	return &e, nil
}

// Create insert equipment baru; tag yang sama → Conflict
func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	const q = `
INSERT INTO equipment
(id, tag, description, equipment_class,
 design_pressure, design_temperature, operating_pressure, operating_temperature,
 material, thickness, diameter, length, volume, year_commissioned, location,
 floc, corrosion_loop, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Tag, e.Description, e.Class,
		e.DesignPressure, e.DesignTemperature, e.OperatingPressure, e.OperatingTemperature,
		e.Material, e.Thickness, nullFloat(e.Diameter), nullFloat(e.Length), nullFloat(e.Volume),
		e.YearCommissioned, e.Location,
		nullString(e.FLOC), nullString(e.CorrosionLoop), e.CreatedAt, e.UpdatedAt,
	)
	return mapErr("create equipment", err)
}

func (r *EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	const q = `
UPDATE equipment SET
 tag=?, description=?, equipment_class=?,
 design_pressure=?, design_temperature=?, operating_pressure=?, operating_temperature=?,
 material=?, thickness=?, diameter=?, length=?, volume=?, year_commissioned=?, location=?,
 updated_at=?
WHERE id=?;
`
	res, err := r.db.ExecContext(ctx, q,
		e.Tag, e.Description, e.Class,
		e.DesignPressure, e.DesignTemperature, e.OperatingPressure, e.OperatingTemperature,
		e.Material, e.Thickness, nullFloat(e.Diameter), nullFloat(e.Length), nullFloat(e.Volume),
		e.YearCommissioned, e.Location, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapErr("update equipment", err)
	}
	return r.mustExist(ctx, res, e.ID)
}

// mustExist turns a zero-row write into NotFound. MySQL reports zero
// affected rows for unchanged values too, so it checks the row itself.
func (r *EquipmentRepository) mustExist(ctx context.Context, res sql.Result, id domain.ID) error {
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM equipment WHERE id=? LIMIT 1;`, id).Scan(&one)
	if err != nil {
		return mapErr("equipment "+string(id), err)
	}
	return nil
}

func (r *EquipmentRepository) Get(ctx context.Context, id domain.ID) (*domain.Equipment, error) {
	q := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id=? LIMIT 1;`
	e, err := scanEquipment(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr("equipment "+string(id), err)
	}
	return e, nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]*domain.Equipment, error) {
	q := `SELECT ` + equipmentColumns + ` FROM equipment ORDER BY tag ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr("list equipment", err)
	}
	defer rows.Close()

	out := []*domain.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, mapErr("list equipment", err)
		}
		out = append(out, e)
	}
	return out, mapErr("list equipment", rows.Err())
}

func (r *EquipmentRepository) Delete(ctx context.Context, id domain.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id=?;`, id)
	if err != nil {
		return mapErr("delete equipment", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fault.NotFound("equipment %s not found", id)
	}
	return nil
}

func (r *EquipmentRepository) AssignFLOC(ctx context.Context, id domain.ID, floc, corrosionLoop *string, updatedAt time.Time) error {
	const q = `UPDATE equipment SET floc=?, corrosion_loop=?, updated_at=? WHERE id=?;`
	res, err := r.db.ExecContext(ctx, q, nullString(floc), nullString(corrosionLoop), updatedAt.UTC(), id)
	if err != nil {
		return mapErr("assign floc", err)
	}
	return r.mustExist(ctx, res, id)
}
