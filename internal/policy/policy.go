// Package policy decides whether an authenticated actor may perform an
// action. Managers are scoped to their own department, employees to their
// own records and administrators are unrestricted. Decisions are pure: no
// storage is consulted, callers resolve the target before asking.
package policy

import (
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

// Action names an operation subject to authorization.
type Action string

const (
	CreateEmployee        Action = "create_employee"
	UpdateEmployee        Action = "update_employee"
	UpdateEmployeeRole    Action = "update_employee_role"
	ViewAllEmployees      Action = "view_all_employees"
	ViewEmployees         Action = "view_employees"
	UpdateEmployeeStatus  Action = "update_employee_status"
	ManageDepartments     Action = "manage_departments"
	CreateTimesheet       Action = "create_timesheet"
	ViewTimesheet         Action = "view_timesheet"
	UpdateTimesheet       Action = "update_timesheet"
	UpdateTimesheetStatus Action = "update_timesheet_status"
	BulkUpdateStatus      Action = "bulk_update_status"
	ExportTimesheets      Action = "export_timesheets"
)

// Actor is the authenticated caller.
type Actor struct {
	ID         string
	Role       model.Role
	Department string
}

// ActorFrom builds an Actor from a resolved employee record.
func ActorFrom(e model.Employee) Actor {
	return Actor{ID: e.ID, Role: e.Role, Department: e.Department}
}

// Target describes the record an action applies to. EmployeeID and
// Department belong to the owning employee; Role is only read for
// UpdateEmployeeStatus and Date only for CreateTimesheet.
type Target struct {
	EmployeeID string
	Department string
	Role       model.Role
	Date       time.Time
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
	code    apperror.Code
}

// Err returns nil for an allowed decision, otherwise an *apperror.Error
// carrying the deny reason.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	code := d.code
	if code == "" {
		code = apperror.CodeForbidden
	}
	return apperror.New(code, d.Reason)
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision {
	return Decision{Reason: reason, code: apperror.CodeForbidden}
}

// Policy evaluates the role rules. now is used to reject future-dated
// timesheets.
type Policy struct {
	now func() time.Time
}

// New returns a Policy. A nil clock means time.Now.
func New(now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{now: now}
}

// Authorize decides whether actor may perform action on target.
func (p *Policy) Authorize(actor Actor, action Action, target Target) Decision {
	if !actor.Role.Valid() {
		return deny("unknown role")
	}

	switch action {
	case CreateEmployee, ViewAllEmployees, ManageDepartments, UpdateEmployeeRole:
		if actor.Role == model.RoleAdministrator {
			return allow()
		}
		return deny("only administrators can perform this action")

	case UpdateEmployee:
		if actor.Role == model.RoleAdministrator || actor.ID == target.EmployeeID {
			return allow()
		}
		return deny("you can only update your own profile")

	case ViewEmployees:
		switch actor.Role {
		case model.RoleAdministrator:
			return allow()
		case model.RoleManager:
			return p.departmentScope(actor, target, "managers can only view employees of their department")
		default:
			if actor.ID == target.EmployeeID && target.EmployeeID != "" {
				return allow()
			}
			return deny("employees can only view their own profile")
		}

	case UpdateEmployeeStatus:
		if actor.ID == target.EmployeeID {
			return deny("you cannot change your own onboarding status")
		}
		switch actor.Role {
		case model.RoleAdministrator:
			return allow()
		case model.RoleManager:
			if target.Role != model.RoleEmployee {
				return deny("managers can only change the status of employees")
			}
			return p.departmentScope(actor, target, "managers can only act within their department")
		default:
			return deny("only managers and administrators can perform this action")
		}

	case UpdateTimesheetStatus, BulkUpdateStatus, ExportTimesheets:
		switch actor.Role {
		case model.RoleAdministrator:
			return allow()
		case model.RoleManager:
			return p.departmentScope(actor, target, "managers can only act within their department")
		default:
			return deny("only managers and administrators can perform this action")
		}

	case CreateTimesheet:
		if actor.Role != model.RoleEmployee {
			return deny("only employees can create timesheets")
		}
		if actor.ID != target.EmployeeID {
			return deny("employees can only create their own timesheets")
		}
		if model.Day(target.Date).After(model.Day(p.now())) {
			return Decision{Reason: "cannot submit timesheet for a future date", code: apperror.CodeValidation}
		}
		return allow()

	case ViewTimesheet, UpdateTimesheet:
		switch actor.Role {
		case model.RoleAdministrator:
			return allow()
		case model.RoleManager:
			return p.departmentScope(actor, target, "managers can only access timesheets from their department")
		default:
			if actor.ID == target.EmployeeID {
				return allow()
			}
			return deny("employees can only access their own timesheets")
		}
	}

	return deny("unknown action")
}

func (p *Policy) departmentScope(actor Actor, target Target, reason string) Decision {
	if actor.Department == "" {
		return deny("manager has no department assigned")
	}
	if actor.Department != target.Department {
		return deny(reason)
	}
	return allow()
}
