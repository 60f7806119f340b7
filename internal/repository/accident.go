package repository

import (
	"context"
	"strconv"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// GetAccidentByID loads an accident with its photo gallery.
func (r *Repository) GetAccidentByID(ctx context.Context, id int64) (*domain.Accident, error) {
	const op = "accident.get"

	row := r.pool.QueryRow(ctx, `
		SELECT id, vehicle_id, vehicle_plate_number, driver_name, driver_phone,
			accident_date, accident_time, location, severity, vehicle_condition,
			description, police_report, police_report_number,
			driver_id_image, driver_license_image, accident_report_file,
			review_status, reviewed_at, reviewer_notes,
			liability_percentage, deduction_amount
		FROM accidents
		WHERE id = $1`, id)

	var a domain.Accident
	err := row.Scan(&a.ID, &a.VehicleID, &a.VehiclePlateNumber, &a.DriverName, &a.DriverPhone,
		&a.AccidentDate, &a.AccidentTime, &a.Location, &a.Severity, &a.VehicleCondition,
		&a.Description, &a.PoliceReport, &a.PoliceReportNumber,
		&a.DriverIDImage, &a.DriverLicenseImage, &a.AccidentReportFile,
		&a.ReviewStatus, &a.ReviewedAt, &a.ReviewerNotes,
		&a.LiabilityPercentage, &a.DeductionAmount)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "accident", strconv.FormatInt(id, 10))
		}
		return nil, internalErr(err, op)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT image_path, caption
		FROM accident_photos
		WHERE accident_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, internalErr(err, op)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.AccidentPhoto
		if err := rows.Scan(&p.ImagePath, &p.Caption); err != nil {
			return nil, internalErr(err, op)
		}
		a.Photos = append(a.Photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr(err, op)
	}
	return &a, nil
}
