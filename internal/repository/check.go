package repository

import (
	"context"
	"strconv"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// CreateCheck inserts a new safety check and fills in its assigned ID.
func (r *Repository) CreateCheck(ctx context.Context, check *domain.SafetyCheck) error {
	const op = "check.create"

	row := r.pool.QueryRow(ctx, `
		INSERT INTO safety_checks (
			vehicle_id, vehicle_plate_number, vehicle_make_model,
			driver_name, driver_national_id, driver_department, driver_city,
			current_delegate, notes, inspection_date, approval_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		check.VehicleID, check.VehiclePlateNumber, check.VehicleMakeModel,
		check.DriverName, check.DriverNationalID, check.DriverDepartment, check.DriverCity,
		check.CurrentDelegate, check.Notes, check.InspectionDate, check.ApprovalStatus)

	if err := row.Scan(&check.ID); err != nil {
		return internalErr(err, op)
	}
	return nil
}

// GetCheckByID loads a safety check without its images.
func (r *Repository) GetCheckByID(ctx context.Context, id int64) (*domain.SafetyCheck, error) {
	const op = "check.get"

	row := r.pool.QueryRow(ctx, `
		SELECT id, vehicle_id, vehicle_plate_number, vehicle_make_model,
			driver_name, driver_national_id, driver_department, driver_city,
			current_delegate, notes, inspection_date, approval_status,
			approved_at, rejection_reason
		FROM safety_checks
		WHERE id = $1`, id)

	var c domain.SafetyCheck
	err := row.Scan(&c.ID, &c.VehicleID, &c.VehiclePlateNumber, &c.VehicleMakeModel,
		&c.DriverName, &c.DriverNationalID, &c.DriverDepartment, &c.DriverCity,
		&c.CurrentDelegate, &c.Notes, &c.InspectionDate, &c.ApprovalStatus,
		&c.ApprovedAt, &c.RejectionReason)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "safety check", strconv.FormatInt(id, 10))
		}
		return nil, internalErr(err, op)
	}
	return &c, nil
}

// UpdateCheckStatus persists an approval transition.
func (r *Repository) UpdateCheckStatus(ctx context.Context, check *domain.SafetyCheck) error {
	const op = "check.update_status"

	tag, err := r.pool.Exec(ctx, `
		UPDATE safety_checks
		SET approval_status = $2, approved_at = $3, rejection_reason = $4
		WHERE id = $1`,
		check.ID, check.ApprovalStatus, check.ApprovedAt, check.RejectionReason)
	if err != nil {
		return internalErr(err, op)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "safety check", strconv.FormatInt(check.ID, 10))
	}
	return nil
}

// CreateImage inserts an image row for a check and fills in its assigned ID.
func (r *Repository) CreateImage(ctx context.Context, img *domain.SafetyImage) error {
	const op = "image.create"

	row := r.pool.QueryRow(ctx, `
		INSERT INTO safety_images (safety_check_id, image_path, image_description, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		img.SafetyCheckID, img.ImagePath, img.ImageDescription, img.UploadedAt)

	if err := row.Scan(&img.ID); err != nil {
		return internalErr(err, op)
	}
	return nil
}

// ListImagesByCheck returns all images of a check, oldest first.
func (r *Repository) ListImagesByCheck(ctx context.Context, checkID int64) ([]domain.SafetyImage, error) {
	const op = "image.list"

	rows, err := r.pool.Query(ctx, `
		SELECT id, safety_check_id, image_path, image_description, uploaded_at
		FROM safety_images
		WHERE safety_check_id = $1
		ORDER BY uploaded_at, id`, checkID)
	if err != nil {
		return nil, internalErr(err, op)
	}
	defer rows.Close()

	var images []domain.SafetyImage
	for rows.Next() {
		var img domain.SafetyImage
		if err := rows.Scan(&img.ID, &img.SafetyCheckID, &img.ImagePath, &img.ImageDescription, &img.UploadedAt); err != nil {
			return nil, internalErr(err, op)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr(err, op)
	}
	return images, nil
}

// GetImageByID loads a single image row.
func (r *Repository) GetImageByID(ctx context.Context, id int64) (*domain.SafetyImage, error) {
	const op = "image.get"

	row := r.pool.QueryRow(ctx, `
		SELECT id, safety_check_id, image_path, image_description, uploaded_at
		FROM safety_images
		WHERE id = $1`, id)

	var img domain.SafetyImage
	err := row.Scan(&img.ID, &img.SafetyCheckID, &img.ImagePath, &img.ImageDescription, &img.UploadedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "image", strconv.FormatInt(id, 10))
		}
		return nil, internalErr(err, op)
	}
	return &img, nil
}

// DeleteImage removes an image row. The caller is responsible for deleting
// the blob it pointed at.
func (r *Repository) DeleteImage(ctx context.Context, id int64) error {
	const op = "image.delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM safety_images WHERE id = $1`, id)
	if err != nil {
		return internalErr(err, op)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "image", strconv.FormatInt(id, 10))
	}
	return nil
}
