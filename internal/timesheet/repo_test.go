package timesheet

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"timetrack/internal/model"
)

const sheetID = "7d0c1f5e-3b1a-4c55-9a57-2f3e8c1b6a10"

var sheetCols = []string{"id", "employee_id", "work_date", "clock_in", "clock_out", "total_hours", "description", "status", "created_at", "updated_at"}

const upsertSQL = `INSERT INTO timesheets .* ON CONFLICT \(employee_id, work_date\) DO UPDATE .* WHERE timesheets\.status = 'rejected' RETURNING .*\(xmax::text <> '0'\)`

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewRepository(db), mock
}

func jan10(h, m int) time.Time { return time.Date(2024, 1, 10, h, m, 0, 0, time.UTC) }

func sheetRow(status model.TimesheetStatus, extra ...driver.Value) []driver.Value {
	row := []driver.Value{sheetID, "E1", jan10(0, 0), jan10(9, 0), jan10(17, 0), 8.0, "work", string(status), jan10(18, 0), jan10(18, 0)}
	return append(row, extra...)
}

func TestRepositoryCreateOrResubmit(t *testing.T) {
	in := model.Timesheet{EmployeeID: "E1", Date: jan10(0, 0), ClockIn: jan10(9, 0), ClockOut: jan10(17, 0), TotalHours: 8, Description: "work"}
	cols := append(append([]string{}, sheetCols...), "resubmitted")

	cases := []struct {
		name        string
		rows        *sqlmock.Rows
		resubmitted bool
		wantErr     error
	}{
		{"fresh insert", sqlmock.NewRows(cols).AddRow(sheetRow(model.TimesheetPending, false)...), false, nil},
		{"rejected row reused", sqlmock.NewRows(cols).AddRow(sheetRow(model.TimesheetPending, true)...), true, nil},
		{"live row blocks insert", sqlmock.NewRows(cols), false, ErrDuplicateEntry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectQuery(upsertSQL).
				WithArgs(sqlmock.AnyArg(), "E1", jan10(0, 0), jan10(9, 0), jan10(17, 0), 8.0, "work").
				WillReturnRows(tc.rows)

			ts, resubmitted, err := repo.CreateOrResubmit(context.Background(), in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if resubmitted != tc.resubmitted {
				t.Fatalf("resubmitted = %v, want %v", resubmitted, tc.resubmitted)
			}
			if ts.ID != sheetID || ts.Status != model.TimesheetPending {
				t.Fatalf("saved = %+v", ts)
			}
		})
	}
}

func TestRepositoryUpdateLocksRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	ledger := NewLedger(repo)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM timesheets WHERE id = \$1 FOR UPDATE`).
		WithArgs(sheetID).
		WillReturnRows(sqlmock.NewRows(sheetCols).AddRow(sheetRow(model.TimesheetRejected)...))
	mock.ExpectQuery(`UPDATE timesheets SET clock_in = \$2, clock_out = \$3, total_hours = \$4, description = \$5, status = \$6`).
		WithArgs(sheetID, jan10(9, 0), jan10(16, 30), 7.5, "work", "pending").
		WillReturnRows(sqlmock.NewRows(sheetCols).AddRow(sheetID, "E1", jan10(0, 0), jan10(9, 0), jan10(16, 30), 7.5, "work", "pending", jan10(18, 0), jan10(19, 0)))
	mock.ExpectCommit()

	out := model.ClockTime{Hour: 16, Minute: 30}
	pending := model.TimesheetPending
	ts, err := ledger.Apply(context.Background(), sheetID, Patch{ClockOut: &out, Status: &pending})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ts.TotalHours != 7.5 || ts.Status != model.TimesheetPending {
		t.Fatalf("updated = %+v", ts)
	}
}

func TestRepositoryUpdateRollsBack(t *testing.T) {
	t.Run("decision refused", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(sheetID).
			WillReturnRows(sqlmock.NewRows(sheetCols).AddRow(sheetRow(model.TimesheetApproved)...))
		mock.ExpectRollback()

		_, err := NewLedger(repo).Update(context.Background(), sheetID, func(cur model.Timesheet) (Patch, error) {
			if cur.Status == model.TimesheetApproved {
				return Patch{}, ErrApprovedLocked
			}
			return Patch{}, nil
		})
		if !errors.Is(err, ErrApprovedLocked) {
			t.Fatalf("err = %v, want ErrApprovedLocked", err)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(sheetID).
			WillReturnRows(sqlmock.NewRows(sheetCols).AddRow(sheetRow(model.TimesheetPending)...))
		mock.ExpectRollback()

		early := model.ClockTime{Hour: 8}
		if _, err := NewLedger(repo).Apply(context.Background(), sheetID, Patch{ClockOut: &early}); !errors.Is(err, ErrInvalidTimeRange) {
			t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(sheetID).WillReturnRows(sqlmock.NewRows(sheetCols))
		mock.ExpectRollback()

		desc := "x"
		if _, err := NewLedger(repo).Apply(context.Background(), sheetID, Patch{Description: &desc}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRepositoryRejectsMalformedID(t *testing.T) {
	repo, _ := newMockRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := repo.Update(ctx, "not-a-uuid", func(*model.Timesheet) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
}

func TestRepositoryListFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	cols := append(append([]string{}, sheetCols...), "name", "surname", "email", "department_name")

	mock.ExpectQuery(`FROM timesheets t JOIN employees e .* WHERE e\.department_name = \$1 AND t\.status = \$2 ORDER BY t\.work_date DESC`).
		WithArgs("Eng", "rejected").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(sheetRow(model.TimesheetRejected, "Eve", "Adams", "e1@example.com", "Eng")...))

	list, err := repo.List(context.Background(), Query{Department: "Eng", Status: model.TimesheetRejected})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].EmployeeName != "Eve" || list[0].EmployeeDepartment != "Eng" {
		t.Fatalf("list = %+v", list)
	}
}

func TestRepositorySetStatusForEmployee(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE timesheets SET status = \$2, updated_at = NOW\(\) WHERE employee_id = \$1`).
		WithArgs("E1", "approved").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.SetStatusForEmployee(context.Background(), "E1", model.TimesheetApproved)
	if err != nil || n != 3 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
}
