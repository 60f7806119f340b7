package repository

import (
	"context"
	"strconv"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// GetEmployeeByID loads a single employee. Used by the authentication gate to
// resolve token claims.
func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	const op = "employee.get"

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, national_id, department_name
		FROM employees
		WHERE id = $1`, id)

	var emp domain.Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.NationalID, &emp.DepartmentName)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "employee", strconv.FormatInt(id, 10))
		}
		return nil, internalErr(err, op)
	}
	return &emp, nil
}
