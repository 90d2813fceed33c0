package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"timetrack/internal/model"
)

var employeeCols = []string{"employee_id", "email", "password_hash", "name", "surname", "role", "department_name", "status", "created_at", "updated_at"}

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

func TestRepositoryUpdateWritesHashWithProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	e := model.Employee{ID: "E1", Email: "e1@x.com", PasswordHash: "$2a$10$hash", Name: "New", Surname: "S", Role: model.RoleEmployee, Department: "Eng", Status: model.EmployeeApproved}

	mock.ExpectQuery(`UPDATE employees SET .* password_hash = \$8`).
		WithArgs("E1", "e1@x.com", "New", "S", "employee", "Eng", "approved", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows(employeeCols).AddRow("E1", "e1@x.com", "$2a$10$hash", "New", "S", "employee", "Eng", "approved", now, now))

	got, err := repo.Update(context.Background(), e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" || got.PasswordHash != "$2a$10$hash" || got.Role != model.RoleEmployee {
		t.Fatalf("updated = %+v", got)
	}
}

func TestRepositoryMapsUniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email", "idx_employees_email", ErrEmailTaken},
		{"primary key", "employees_pkey", ErrIDTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectQuery(`INSERT INTO employees`).
				WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: tc.constraint})

			_, err := repo.Create(context.Background(), model.Employee{ID: "E1", Email: "e1@x.com"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM employees WHERE employee_id = \$1`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(employeeCols))

	if _, err := repo.FindByID(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
