package repository

import (
	"context"
	"strconv"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// ListActiveVehicles returns all vehicles available for new safety checks,
// ordered by plate number.
func (r *Repository) ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	const op = "vehicle.list_active"

	rows, err := r.pool.Query(ctx, `
		SELECT id, plate_number, make, model, year, color, status
		FROM vehicles
		WHERE status = $1
		ORDER BY plate_number`, domain.VehicleStatusActive)
	if err != nil {
		return nil, internalErr(err, op)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.Make, &v.Model, &v.Year, &v.Color, &v.Status); err != nil {
			return nil, internalErr(err, op)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr(err, op)
	}
	return vehicles, nil
}

// GetVehicleByID loads a single vehicle regardless of status.
func (r *Repository) GetVehicleByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	const op = "vehicle.get"

	row := r.pool.QueryRow(ctx, `
		SELECT id, plate_number, make, model, year, color, status
		FROM vehicles
		WHERE id = $1`, id)

	var v domain.Vehicle
	err := row.Scan(&v.ID, &v.PlateNumber, &v.Make, &v.Model, &v.Year, &v.Color, &v.Status)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "vehicle", strconv.FormatInt(id, 10))
		}
		return nil, internalErr(err, op)
	}
	return &v, nil
}
