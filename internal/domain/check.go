// Package domain contains core business types for the Nuzum fleet platform.
//
// This file defines the SafetyCheck aggregate: the pre-trip inspection record
// a driver submits from the mobile app, together with its uploaded photos.
package domain

import (
	"time"
)

// =============================================================================
// Approval Status
// =============================================================================

// ApprovalStatus represents the review state of a safety check.
type ApprovalStatus string

const (
	// ApprovalStatusPending is the initial state of every check.
	ApprovalStatusPending ApprovalStatus = "pending"

	// ApprovalStatusApproved means a supervisor accepted the check.
	ApprovalStatusApproved ApprovalStatus = "approved"

	// ApprovalStatusRejected means a supervisor refused the check.
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// String returns the string representation of the status.
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// =============================================================================
// Upload Constants
// =============================================================================

const (
	// MaxUploadSize is the ceiling for a single safety-check image upload (50MB).
	MaxUploadSize = 50 * 1024 * 1024

	// DefaultDriverCity is used when the mobile client omits driver_city.
	DefaultDriverCity = "الرياض"

	// UnspecifiedDepartment is the fallback when neither the request nor the
	// employee record carries a department.
	UnspecifiedDepartment = "غير محدد"
)

// AllowedUploadExtensions are the file extensions accepted for check photos,
// lowercase and without the leading dot.
var AllowedUploadExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"heic": true,
	"heif": true,
}

// IsAllowedUploadExtension reports whether ext (without dot, any case) is an
// accepted upload format.
func IsAllowedUploadExtension(ext string) bool {
	return AllowedUploadExtensions[ext]
}

// =============================================================================
// SafetyCheck
// =============================================================================

// SafetyCheck is a pre-trip vehicle inspection record.
//
// VehiclePlateNumber and VehicleMakeModel are frozen copies of the vehicle's
// fields taken at creation; later vehicle edits never mutate them.
type SafetyCheck struct {
	ID                 int64
	VehicleID          int64
	DriverName         string
	DriverNationalID   string
	DriverDepartment   string
	DriverCity         string
	VehiclePlateNumber string
	VehicleMakeModel   string
	CurrentDelegate    string
	Notes              string
	InspectionDate     time.Time
	ApprovalStatus     ApprovalStatus
	ApprovedAt         *time.Time
	RejectionReason    string
}

// Approve transitions the check from pending to approved, stamping ApprovedAt.
// Any other starting state is refused.
func (c *SafetyCheck) Approve(now time.Time) error {
	if c.ApprovalStatus != ApprovalStatusPending {
		return Conflict("check.approve",
			"cannot approve a check in status "+c.ApprovalStatus.String())
	}
	c.ApprovalStatus = ApprovalStatusApproved
	c.ApprovedAt = &now
	return nil
}

// Reject transitions the check from pending to rejected. The reason is
// mandatory: a rejection without one is refused.
func (c *SafetyCheck) Reject(reason string) error {
	if c.ApprovalStatus != ApprovalStatusPending {
		return Conflict("check.reject",
			"cannot reject a check in status "+c.ApprovalStatus.String())
	}
	if reason == "" {
		return Invalid("check.reject", "rejection reason is required")
	}
	c.ApprovalStatus = ApprovalStatusRejected
	c.RejectionReason = reason
	return nil
}

// =============================================================================
// SafetyImage
// =============================================================================

// SafetyImage is a photo attached to a safety check. ImagePath is the object
// store key (e.g., "safety_checks/<uuid>.jpg"); the blob is owned by the row
// and deleted with it.
type SafetyImage struct {
	ID               int64
	SafetyCheckID    int64
	ImagePath        string
	ImageDescription string
	UploadedAt       time.Time

	// URL is computed from ImagePath by the service layer, never stored.
	URL string
}
