package timesheet

import (
	"context"
	"fmt"
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/metrics"
	"timetrack/internal/model"
	"timetrack/internal/policy"
)

// Notifier is told about reviewer decisions. Calls must not block on
// delivery and must not fail the request.
type Notifier interface {
	TimesheetReviewed(ctx context.Context, ts model.TimesheetEntry)
	TimesheetsBulkReviewed(ctx context.Context, owner model.Employee, status model.TimesheetStatus, count int64)
}

type noopNotifier struct{}

func (noopNotifier) TimesheetReviewed(context.Context, model.TimesheetEntry) {}
func (noopNotifier) TimesheetsBulkReviewed(context.Context, model.Employee, model.TimesheetStatus, int64) {
}

// Edit is a timesheet change requested by an actor.
type Edit struct {
	ClockIn     *model.ClockTime
	ClockOut    *model.ClockTime
	Description *string
	Status      *model.TimesheetStatus
}

// Service is the approval workflow.
type Service struct {
	ledger   *Ledger
	dir      Directory
	policy   *policy.Policy
	notifier Notifier
}

func NewService(ledger *Ledger, dir Directory, p *policy.Policy, n Notifier) *Service {
	if n == nil {
		n = noopNotifier{}
	}
	return &Service{ledger: ledger, dir: dir, policy: p, notifier: n}
}

// Submit records a timesheet for the acting employee. Submitting against a
// rejected entry for the same date resubmits it.
func (s *Service) Submit(ctx context.Context, actor model.Employee, e Entry) (model.Timesheet, error) {
	e.EmployeeID = actor.ID
	target := policy.Target{EmployeeID: actor.ID, Department: actor.Department, Date: e.Date}
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.CreateTimesheet, target).Err(); err != nil {
		return model.Timesheet{}, err
	}
	ts, resubmitted, err := s.ledger.Create(ctx, e)
	if err != nil {
		return model.Timesheet{}, err
	}
	if resubmitted {
		metrics.TimesheetSubmissions.WithLabelValues("resubmitted").Inc()
		metrics.TimesheetTransitions.WithLabelValues(string(model.TimesheetRejected), string(model.TimesheetPending)).Inc()
	} else {
		metrics.TimesheetSubmissions.WithLabelValues("created").Inc()
	}
	return ts, nil
}

// Get returns a timesheet visible to actor.
func (s *Service) Get(ctx context.Context, actor model.Employee, id string) (model.TimesheetEntry, error) {
	e, err := s.ledger.Get(ctx, id)
	if err != nil {
		return model.TimesheetEntry{}, err
	}
	if err := s.authorizeOn(actor, policy.ViewTimesheet, e); err != nil {
		return model.TimesheetEntry{}, err
	}
	return e, nil
}

// List dispatches on role: employees see their own timesheets, managers
// their department's and administrators all of them.
func (s *Service) List(ctx context.Context, actor model.Employee, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	switch actor.Role {
	case model.RoleAdministrator:
		return s.ledger.ListAll(ctx, status)
	case model.RoleManager:
		if actor.Department == "" {
			return []model.TimesheetEntry{}, nil
		}
		return s.ledger.ListByDepartment(ctx, actor.Department, status)
	case model.RoleEmployee:
		return s.ledger.ListByEmployee(ctx, actor.ID, status)
	}
	return nil, apperror.Forbidden("unknown role")
}

// Export returns what List would, restricted to reviewers.
func (s *Service) Export(ctx context.Context, actor model.Employee, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	target := policy.Target{Department: actor.Department}
	if err := s.policy.Authorize(policy.ActorFrom(actor), policy.ExportTimesheets, target).Err(); err != nil {
		return nil, err
	}
	return s.List(ctx, actor, status)
}

// ListForEmployee returns one employee's timesheets.
func (s *Service) ListForEmployee(ctx context.Context, actor model.Employee, employeeID string, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	owner, err := s.owner(ctx, actor, policy.ViewTimesheet, employeeID)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListByEmployee(ctx, owner.ID, status)
}

// GetForDate returns one employee's timesheet for a date.
func (s *Service) GetForDate(ctx context.Context, actor model.Employee, employeeID string, date time.Time) (model.TimesheetEntry, error) {
	owner, err := s.owner(ctx, actor, policy.ViewTimesheet, employeeID)
	if err != nil {
		return model.TimesheetEntry{}, err
	}
	return s.ledger.GetForDate(ctx, owner.ID, date)
}

// Update changes a timesheet. Only managers and administrators may set the
// status, and they may not touch the recorded times of someone else. When
// the owner edits a rejected entry it goes back to pending; an approved
// entry is closed to its owner.
func (s *Service) Update(ctx context.Context, actor model.Employee, id string, ed Edit) (model.TimesheetEntry, error) {
	e, err := s.ledger.Get(ctx, id)
	if err != nil {
		return model.TimesheetEntry{}, err
	}
	if err := s.authorizeOn(actor, policy.UpdateTimesheet, e); err != nil {
		return model.TimesheetEntry{}, err
	}
	if ed.Status != nil {
		if err := s.authorizeOn(actor, policy.UpdateTimesheetStatus, e); err != nil {
			return model.TimesheetEntry{}, err
		}
	}
	isOwner := actor.ID == e.EmployeeID
	changesRecord := ed.ClockIn != nil || ed.ClockOut != nil || ed.Description != nil
	if changesRecord && !isOwner {
		return model.TimesheetEntry{}, apperror.Forbidden("only the owner can change recorded times")
	}

	var from model.TimesheetStatus
	ts, err := s.ledger.Update(ctx, id, func(cur model.Timesheet) (Patch, error) {
		from = cur.Status
		p := Patch{ClockIn: ed.ClockIn, ClockOut: ed.ClockOut, Description: ed.Description, Status: ed.Status}
		if p.empty() {
			return p, apperror.Validation("nothing to update")
		}
		if isOwner && ed.Status == nil {
			switch cur.Status {
			case model.TimesheetApproved:
				return Patch{}, ErrApprovedLocked
			case model.TimesheetRejected:
				pending := model.TimesheetPending
				p.Status = &pending
			}
		}
		return p, nil
	})
	if err != nil {
		return model.TimesheetEntry{}, fmt.Errorf("update timesheet: %w", err)
	}

	e.Timesheet = ts
	if from != ts.Status {
		metrics.TimesheetTransitions.WithLabelValues(string(from), string(ts.Status)).Inc()
		if ed.Status != nil {
			s.notifier.TimesheetReviewed(ctx, e)
		}
	}
	return e, nil
}

// SetStatus is a reviewer decision on one timesheet.
func (s *Service) SetStatus(ctx context.Context, actor model.Employee, id string, status model.TimesheetStatus) (model.TimesheetEntry, error) {
	return s.Update(ctx, actor, id, Edit{Status: &status})
}

// BulkSetStatus moves all of an employee's timesheets to status, whatever
// their current state, and returns how many were changed.
func (s *Service) BulkSetStatus(ctx context.Context, actor model.Employee, employeeID string, status model.TimesheetStatus) (int64, error) {
	owner, err := s.owner(ctx, actor, policy.BulkUpdateStatus, employeeID)
	if err != nil {
		return 0, err
	}
	n, err := s.ledger.SetStatusForEmployee(ctx, owner.ID, status)
	if err != nil {
		return 0, fmt.Errorf("bulk status: %w", err)
	}
	if n > 0 {
		metrics.TimesheetTransitions.WithLabelValues("any", string(status)).Add(float64(n))
		s.notifier.TimesheetsBulkReviewed(ctx, owner, status, n)
	}
	return n, nil
}

func (s *Service) owner(ctx context.Context, actor model.Employee, action policy.Action, employeeID string) (model.Employee, error) {
	owner, err := s.dir.FindByID(ctx, employeeID)
	if err != nil {
		return model.Employee{}, err
	}
	target := policy.Target{EmployeeID: owner.ID, Department: owner.Department}
	if err := s.policy.Authorize(policy.ActorFrom(actor), action, target).Err(); err != nil {
		return model.Employee{}, err
	}
	return owner, nil
}

func (s *Service) authorizeOn(actor model.Employee, action policy.Action, e model.TimesheetEntry) error {
	target := policy.Target{EmployeeID: e.EmployeeID, Department: e.EmployeeDepartment}
	return s.policy.Authorize(policy.ActorFrom(actor), action, target).Err()
}
