package domain

import "time"

// =============================================================================
// Review Status
// =============================================================================

// ReviewStatus represents the review state of an accident record.
type ReviewStatus string

const (
	ReviewStatusPending     ReviewStatus = "pending"
	ReviewStatusUnderReview ReviewStatus = "under_review"
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusRejected    ReviewStatus = "rejected"
)

// String returns the string representation of the status.
func (s ReviewStatus) String() string {
	return string(s)
}

// =============================================================================
// Accident
// =============================================================================

// Accident is the aggregate the PDF composer renders. The attachment fields
// hold object-store keys; scanned documents may be PDFs rather than images.
type Accident struct {
	ID                  int64
	VehicleID           int64
	VehiclePlateNumber  string
	DriverName          string
	DriverPhone         string
	AccidentDate        time.Time
	AccidentTime        string // "HH:MM", empty when not recorded
	Location            string
	Severity            string
	VehicleCondition    string
	Description         string
	PoliceReport        bool
	PoliceReportNumber  string
	DriverIDImage       string // object-store key, may be empty
	DriverLicenseImage  string // object-store key, may be empty
	AccidentReportFile  string // object-store key, may be a PDF
	ReviewStatus        ReviewStatus
	ReviewedAt          *time.Time
	ReviewerNotes       string
	LiabilityPercentage float64
	DeductionAmount     float64

	Photos []AccidentPhoto
}

// AccidentPhoto is a gallery photo attached to an accident.
type AccidentPhoto struct {
	ImagePath string // object-store key
	Caption   string
}

// IsReviewed reports whether the review section should be rendered.
func (a *Accident) IsReviewed() bool {
	return a.ReviewedAt != nil
}
