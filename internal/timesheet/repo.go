package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timetrack/internal/model"
	"timetrack/internal/store"
)

// Repository persists timesheets in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const timesheetColumns = `id, employee_id, work_date, clock_in, clock_out, total_hours, description, status, created_at, updated_at`

const entrySelect = `
	SELECT t.id, t.employee_id, t.work_date, t.clock_in, t.clock_out, t.total_hours, t.description, t.status,
	       t.created_at, t.updated_at, e.name, e.surname, e.email, e.department_name
	FROM timesheets t
	JOIN employees e ON e.employee_id = t.employee_id`

type scanner interface{ Scan(...any) error }

func scanTimesheet(row scanner, extra ...any) (model.Timesheet, error) {
	var ts model.Timesheet
	dest := append([]any{&ts.ID, &ts.EmployeeID, &ts.Date, &ts.ClockIn, &ts.ClockOut, &ts.TotalHours,
		&ts.Description, &ts.Status, &ts.CreatedAt, &ts.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Timesheet{}, err
	}
	ts.Date = model.Day(ts.Date)
	ts.ClockIn, ts.ClockOut = ts.ClockIn.UTC(), ts.ClockOut.UTC()
	return ts, nil
}

func scanEntry(row scanner) (model.TimesheetEntry, error) {
	var e model.TimesheetEntry
	ts, err := scanTimesheet(row, &e.EmployeeName, &e.EmployeeSurname, &e.EmployeeEmail, &e.EmployeeDepartment)
	if err != nil {
		return model.TimesheetEntry{}, err
	}
	e.Timesheet = ts
	return e, nil
}

// CreateOrResubmit relies on the (employee_id, work_date) unique constraint:
// the upsert only fires when the existing row is rejected, so a conflicting
// non-rejected row yields no result.
func (r *Repository) CreateOrResubmit(ctx context.Context, ts model.Timesheet) (model.Timesheet, bool, error) {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}
	var resubmitted bool
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO timesheets (id, employee_id, work_date, clock_in, clock_out, total_hours, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		ON CONFLICT (employee_id, work_date) DO UPDATE
		SET clock_in = EXCLUDED.clock_in,
		    clock_out = EXCLUDED.clock_out,
		    total_hours = EXCLUDED.total_hours,
		    description = EXCLUDED.description,
		    status = 'pending',
		    updated_at = NOW()
		WHERE timesheets.status = 'rejected'
		RETURNING `+timesheetColumns+`, (xmax::text <> '0')`,
		ts.ID, ts.EmployeeID, model.Day(ts.Date), ts.ClockIn, ts.ClockOut, ts.TotalHours, ts.Description)
	saved, err := scanTimesheet(row, &resubmitted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Timesheet{}, false, ErrDuplicateEntry
	}
	if err != nil {
		return model.Timesheet{}, false, fmt.Errorf("insert timesheet: %w", err)
	}
	return saved, resubmitted, nil
}

func (r *Repository) Get(ctx context.Context, id string) (model.TimesheetEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.TimesheetEntry{}, ErrNotFound
	}
	e, err := scanEntry(r.db.QueryRowContext(ctx, entrySelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TimesheetEntry{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) GetByDate(ctx context.Context, employeeID string, date time.Time) (model.TimesheetEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, entrySelect+` WHERE t.employee_id = $1 AND t.work_date = $2`,
		employeeID, model.Day(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TimesheetEntry{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) Update(ctx context.Context, id string, fn func(ts *model.Timesheet) error) (model.Timesheet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Timesheet{}, ErrNotFound
	}
	var updated model.Timesheet
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		ts, err := scanTimesheet(tx.QueryRowContext(ctx,
			`SELECT `+timesheetColumns+` FROM timesheets WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&ts); err != nil {
			return err
		}
		updated, err = scanTimesheet(tx.QueryRowContext(ctx, `
			UPDATE timesheets
			SET clock_in = $2, clock_out = $3, total_hours = $4, description = $5, status = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING `+timesheetColumns,
			id, ts.ClockIn, ts.ClockOut, ts.TotalHours, ts.Description, ts.Status))
		return err
	})
	if err != nil {
		return model.Timesheet{}, err
	}
	return updated, nil
}

func (r *Repository) SetStatusForEmployee(ctx context.Context, employeeID string, status model.TimesheetStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timesheets SET status = $2, updated_at = NOW() WHERE employee_id = $1`, employeeID, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) List(ctx context.Context, q Query) ([]model.TimesheetEntry, error) {
	query := entrySelect
	var (
		args    []any
		clauses []string
	)
	if q.EmployeeID != "" {
		args = append(args, q.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("t.employee_id = $%d", len(args)))
	}
	if q.Department != "" {
		args = append(args, q.Department)
		clauses = append(clauses, fmt.Sprintf("e.department_name = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.work_date DESC, t.employee_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.TimesheetEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
