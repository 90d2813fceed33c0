package timesheet

import (
	"context"
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

var (
	ErrNotFound         = apperror.New(apperror.CodeNotFound, "timesheet not found")
	ErrDuplicateEntry   = apperror.Validation("a timesheet for this date already exists")
	ErrInvalidTimeRange = apperror.Validation("clock out must be after clock in")
	ErrApprovedLocked   = apperror.Validation("approved timesheets cannot be edited")
)

// Query selects timesheets for List. Empty fields match everything.
type Query struct {
	EmployeeID string
	Department string
	Status     model.TimesheetStatus
}

// Store persists timesheets. Reads join the owning employee.
type Store interface {
	// CreateOrResubmit inserts ts, or overwrites the existing record for
	// the same employee and date when that record is rejected. The check
	// and the write are one atomic step. It reports whether an existing
	// record was reused and fails with ErrDuplicateEntry otherwise.
	CreateOrResubmit(ctx context.Context, ts model.Timesheet) (model.Timesheet, bool, error)
	Get(ctx context.Context, id string) (model.TimesheetEntry, error)
	GetByDate(ctx context.Context, employeeID string, date time.Time) (model.TimesheetEntry, error)
	// Update loads the record, lets fn mutate it and writes it back while
	// holding the row.
	Update(ctx context.Context, id string, fn func(ts *model.Timesheet) error) (model.Timesheet, error)
	SetStatusForEmployee(ctx context.Context, employeeID string, status model.TimesheetStatus) (int64, error)
	List(ctx context.Context, q Query) ([]model.TimesheetEntry, error)
}

// Directory resolves timesheet owners.
type Directory interface {
	FindByID(ctx context.Context, id string) (model.Employee, error)
}

func entryOf(ts model.Timesheet, owner model.Employee) model.TimesheetEntry {
	return model.TimesheetEntry{
		Timesheet:          ts,
		EmployeeName:       owner.Name,
		EmployeeSurname:    owner.Surname,
		EmployeeEmail:      owner.Email,
		EmployeeDepartment: owner.Department,
	}
}
