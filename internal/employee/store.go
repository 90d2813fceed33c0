package employee

import (
	"context"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

var (
	ErrNotFound           = apperror.New(apperror.CodeNotFound, "employee not found")
	ErrDepartmentNotFound = apperror.New(apperror.CodeNotFound, "department not found")
	ErrEmailTaken         = apperror.New(apperror.CodeConflict, "email already in use")
	ErrIDTaken            = apperror.New(apperror.CodeConflict, "employee id already exists")
	ErrDepartmentExists   = apperror.New(apperror.CodeConflict, "department already exists")
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Department string
	Role       model.Role
	Status     model.EmployeeStatus
}

func (f Filter) matches(e model.Employee) bool {
	if f.Department != "" && e.Department != f.Department {
		return false
	}
	if f.Role != "" && e.Role != f.Role {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// Store persists employees and departments. Emails are compared
// case-insensitively.
type Store interface {
	Create(ctx context.Context, e model.Employee) (model.Employee, error)
	FindByID(ctx context.Context, id string) (model.Employee, error)
	FindByEmail(ctx context.Context, email string) (model.Employee, error)
	// Update writes every mutable field of e, the password hash included.
	Update(ctx context.Context, e model.Employee) (model.Employee, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	List(ctx context.Context, f Filter) ([]model.Employee, error)

	CreateDepartment(ctx context.Context, name string) (model.Department, error)
	FindDepartment(ctx context.Context, name string) (model.Department, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
}
