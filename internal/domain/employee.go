// Package domain contains core business types for the Nuzum fleet platform.
package domain

// Employee is the identity resolved by the authentication gate.
//
// Employees are managed by the main administration application; this service
// only reads them to resolve bearer tokens and to fill driver-field fallbacks
// on check creation.
type Employee struct {
	ID             int64
	Name           string
	NationalID     string
	DepartmentName string // Empty when the employee has no department
}
