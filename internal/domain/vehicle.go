package domain

import "fmt"

// Vehicle statuses as stored in the fleet database.
const (
	VehicleStatusActive     = "active"
	VehicleStatusInWorkshop = "in_workshop"
	VehicleStatusOutOfOrder = "out_of_order"
	VehicleStatusHandedOver = "handed_over"
)

// Vehicle represents a fleet vehicle available for safety checks.
type Vehicle struct {
	ID          int64
	PlateNumber string
	Make        string
	Model       string
	Year        int
	Color       string
	Status      string
}

// MakeModel returns the combined make/model label captured on check creation.
func (v *Vehicle) MakeModel() string {
	return fmt.Sprintf("%s %s", v.Make, v.Model)
}

// IsActive reports whether the vehicle can receive new safety checks.
func (v *Vehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}
