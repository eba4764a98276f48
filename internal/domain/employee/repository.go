package employee

import "context"

// EmployeeRepository reads the external employees table.
type EmployeeRepository interface {
	// GetByID retrieves an employee by primary id
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByJobNumber resolves an external job number to an employee
	GetByJobNumber(ctx context.Context, jobNumber string) (Employee, error)
}
