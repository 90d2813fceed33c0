package store

import (
	"context"
	"database/sql"
)

// Department names on employees are a soft reference: no foreign key, so
// renaming a department leaves its employees pointing at the old name.
const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS employees (
	employee_id     TEXT PRIMARY KEY,
	email           TEXT NOT NULL,
	password_hash   TEXT NOT NULL,
	name            TEXT NOT NULL,
	surname         TEXT NOT NULL,
	role            TEXT NOT NULL CHECK (role IN ('employee', 'manager', 'administrator')),
	department_name TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_email ON employees (LOWER(email));
CREATE INDEX IF NOT EXISTS idx_employees_department ON employees (department_name);

CREATE TABLE IF NOT EXISTS timesheets (
	id           UUID PRIMARY KEY,
	employee_id  TEXT NOT NULL REFERENCES employees (employee_id),
	work_date    DATE NOT NULL,
	clock_in     TIMESTAMPTZ NOT NULL,
	clock_out    TIMESTAMPTZ NOT NULL,
	total_hours  NUMERIC(6,2) NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT timesheets_employee_date UNIQUE (employee_id, work_date),
	CONSTRAINT timesheets_clock_order CHECK (clock_out > clock_in)
);

CREATE INDEX IF NOT EXISTS idx_timesheets_status ON timesheets (status);
`

// Migrate creates the tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
