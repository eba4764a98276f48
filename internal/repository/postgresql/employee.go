package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/employee"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

const employeeColumns = `
	id, job_number, full_name, status, department_id, created_at, updated_at
`

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.JobNumber, &e.FullName, &e.Status, &e.DepartmentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return e, nil
}

// GetByJobNumber implements employee.EmployeeRepository.
func (r *employeeRepository) GetByJobNumber(ctx context.Context, jobNumber string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE job_number = $1`

	var e employee.Employee
	err := q.QueryRow(ctx, query, jobNumber).Scan(
		&e.ID, &e.JobNumber, &e.FullName, &e.Status, &e.DepartmentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by job number: %w", err)
	}

	return e, nil
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}
