package employee

import "context"

// EmployeeRepository resolves the employee identity behind an attendance request.
// Employee CRUD lives outside this service.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound for unknown, malformed or soft-deleted IDs
	GetByID(ctx context.Context, id string) (Employee, error)
}
