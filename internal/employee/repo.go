package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"timetrack/internal/model"
)

const uniqueViolation = "23505"

// Repository persists employees and departments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const employeeColumns = `employee_id, email, password_hash, name, surname, role, department_name, status, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.Email, &e.PasswordHash, &e.Name, &e.Surname, &e.Role, &e.Department, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *Repository) Create(ctx context.Context, e model.Employee) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (employee_id, email, password_hash, name, surname, role, department_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+employeeColumns,
		e.ID, e.Email, e.PasswordHash, e.Name, e.Surname, e.Role, e.Department, e.Status)
	created, err := scanEmployee(row)
	if err != nil {
		return model.Employee{}, mapUnique(err)
	}
	return created, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(email) = LOWER($1)`, email)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) Update(ctx context.Context, e model.Employee) (model.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE employees
		SET email = $2, name = $3, surname = $4, role = $5, department_name = $6, status = $7,
		    password_hash = $8, updated_at = NOW()
		WHERE employee_id = $1
		RETURNING `+employeeColumns,
		e.ID, e.Email, e.Name, e.Surname, e.Role, e.Department, e.Status, e.PasswordHash)
	updated, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, ErrNotFound
	}
	if err != nil {
		return model.Employee{}, mapUnique(err)
	}
	return updated, nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE employees SET password_hash = $2, updated_at = NOW() WHERE employee_id = $1`, id, hash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	var (
		args    []any
		clauses []string
	)
	if f.Department != "" {
		args = append(args, f.Department)
		clauses = append(clauses, fmt.Sprintf("department_name = $%d", len(args)))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY employee_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *Repository) CreateDepartment(ctx context.Context, name string) (model.Department, error) {
	var d model.Department
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO departments (name) VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if isUnique(err) {
			return model.Department{}, ErrDepartmentExists
		}
		return model.Department{}, err
	}
	return d, nil
}

func (r *Repository) FindDepartment(ctx context.Context, name string) (model.Department, error) {
	var d model.Department
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM departments WHERE name = $1`, name).
		Scan(&d.ID, &d.Name, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Department{}, ErrDepartmentNotFound
	}
	return d, err
}

func (r *Repository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// mapUnique turns unique violations on employees into conflict errors.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if pgErr.ConstraintName == "idx_employees_email" {
		return ErrEmailTaken
	}
	return ErrIDTaken
}
