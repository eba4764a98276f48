package employee

import "time"

// Employment statuses. Only active employees participate in membership
// evaluation.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusOnLeave  = "on_leave"
)

// Employee is read-only to the engine; the outer HR application owns
// the table.
type Employee struct {
	ID           string
	JobNumber    *string
	FullName     string
	Status       string
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the employee participates in evaluation.
func (e *Employee) Active() bool {
	return e.Status == StatusActive
}
