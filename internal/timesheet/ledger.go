// Package timesheet records daily clock-in/clock-out entries and drives
// their approval lifecycle.
//
// The Ledger owns record integrity: one timesheet per employee and date,
// clock out after clock in, and total hours derived at write time. The
// Service layers authorization and the pending/approved/rejected state
// machine on top.
package timesheet

import (
	"context"
	"time"

	"timetrack/internal/model"
)

// Entry is a new timesheet as submitted by its owner.
type Entry struct {
	EmployeeID  string
	Date        time.Time
	ClockIn     model.ClockTime
	ClockOut    model.ClockTime
	Description string
}

// Patch is a partial change. Nil fields are left untouched.
type Patch struct {
	ClockIn     *model.ClockTime
	ClockOut    *model.ClockTime
	Description *string
	Status      *model.TimesheetStatus
}

func (p Patch) empty() bool {
	return p.ClockIn == nil && p.ClockOut == nil && p.Description == nil && p.Status == nil
}

// Ledger stores timesheets and keeps their derived fields consistent.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Create records a timesheet. When a rejected record already exists for
// the same employee and date it is overwritten and reset to pending, keeping
// its id; the bool result reports that case. Any other existing record
// fails with ErrDuplicateEntry.
func (l *Ledger) Create(ctx context.Context, e Entry) (model.Timesheet, bool, error) {
	in, out := e.ClockIn.On(e.Date), e.ClockOut.On(e.Date)
	if !out.After(in) {
		return model.Timesheet{}, false, ErrInvalidTimeRange
	}
	return l.store.CreateOrResubmit(ctx, model.Timesheet{
		EmployeeID:  e.EmployeeID,
		Date:        model.Day(e.Date),
		ClockIn:     in,
		ClockOut:    out,
		TotalHours:  model.TotalHours(in, out),
		Description: e.Description,
		Status:      model.TimesheetPending,
	})
}

// Update applies the patch returned by decide. decide sees the current
// record while it is held, so checks against its status cannot race with
// another writer.
func (l *Ledger) Update(ctx context.Context, id string, decide func(cur model.Timesheet) (Patch, error)) (model.Timesheet, error) {
	return l.store.Update(ctx, id, func(ts *model.Timesheet) error {
		p, err := decide(*ts)
		if err != nil {
			return err
		}
		return applyPatch(ts, p)
	})
}

// Apply is Update with a fixed patch.
func (l *Ledger) Apply(ctx context.Context, id string, p Patch) (model.Timesheet, error) {
	return l.Update(ctx, id, func(model.Timesheet) (Patch, error) { return p, nil })
}

func applyPatch(ts *model.Timesheet, p Patch) error {
	in, out := ts.ClockIn, ts.ClockOut
	if p.ClockIn != nil {
		in = p.ClockIn.On(ts.Date)
	}
	if p.ClockOut != nil {
		out = p.ClockOut.On(ts.Date)
	}
	if p.ClockIn != nil || p.ClockOut != nil {
		if !out.After(in) {
			return ErrInvalidTimeRange
		}
		ts.ClockIn, ts.ClockOut = in, out
		ts.TotalHours = model.TotalHours(in, out)
	}
	if p.Description != nil {
		ts.Description = *p.Description
	}
	if p.Status != nil {
		ts.Status = *p.Status
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, id string) (model.TimesheetEntry, error) {
	return l.store.Get(ctx, id)
}

// GetForDate returns the employee's timesheet for date, or ErrNotFound.
func (l *Ledger) GetForDate(ctx context.Context, employeeID string, date time.Time) (model.TimesheetEntry, error) {
	return l.store.GetByDate(ctx, employeeID, date)
}

func (l *Ledger) ListByEmployee(ctx context.Context, employeeID string, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	return l.store.List(ctx, Query{EmployeeID: employeeID, Status: status})
}

// ListByDepartment joins owners by department name.
func (l *Ledger) ListByDepartment(ctx context.Context, department string, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	return l.store.List(ctx, Query{Department: department, Status: status})
}

func (l *Ledger) ListAll(ctx context.Context, status model.TimesheetStatus) ([]model.TimesheetEntry, error) {
	return l.store.List(ctx, Query{Status: status})
}

// SetStatusForEmployee moves every timesheet of the employee to status,
// whatever its current state.
func (l *Ledger) SetStatusForEmployee(ctx context.Context, employeeID string, status model.TimesheetStatus) (int64, error) {
	return l.store.SetStatusForEmployee(ctx, employeeID, status)
}
