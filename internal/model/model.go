package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleEmployee      Role = "employee"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// ParseRole normalises a role string. Legacy spellings ("mentor", "admin")
// map onto the closed set; anything else is rejected.
func ParseRole(s string) (Role, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "roleenum.")
	switch v {
	case "employee":
		return RoleEmployee, nil
	case "manager", "mentor":
		return RoleManager, nil
	case "administrator", "admin":
		return RoleAdministrator, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdministrator
}

// EmployeeStatus tracks onboarding approval of an account.
type EmployeeStatus string

const (
	EmployeePending  EmployeeStatus = "pending"
	EmployeeApproved EmployeeStatus = "approved"
	EmployeeRejected EmployeeStatus = "rejected"
)

// ParseEmployeeStatus validates an onboarding status value.
func ParseEmployeeStatus(s string) (EmployeeStatus, error) {
	switch v := EmployeeStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case EmployeePending, EmployeeApproved, EmployeeRejected:
		return v, nil
	}
	return "", fmt.Errorf("unknown employee status %q", s)
}

// TimesheetStatus is the approval state of a timesheet.
type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "pending"
	TimesheetApproved TimesheetStatus = "approved"
	TimesheetRejected TimesheetStatus = "rejected"
)

// ParseTimesheetStatus validates a timesheet status value.
func ParseTimesheetStatus(s string) (TimesheetStatus, error) {
	switch v := TimesheetStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case TimesheetPending, TimesheetApproved, TimesheetRejected:
		return v, nil
	}
	return "", fmt.Errorf("unknown timesheet status %q", s)
}

// Employee is an account. Department is a soft reference by name: nothing
// enforces that a Department with that name exists.
type Employee struct {
	ID           string         `json:"employee_id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name"`
	Surname      string         `json:"surname"`
	Role         Role           `json:"role"`
	Department   string         `json:"department_name,omitempty"`
	Status       EmployeeStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Department groups employees by name.
type Department struct {
	ID        int64     `json:"department_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Timesheet is one employee's record for one date. ClockIn and ClockOut
// carry the full instant on Date.
type Timesheet struct {
	ID          string
	EmployeeID  string
	Date        time.Time
	ClockIn     time.Time
	ClockOut    time.Time
	TotalHours  float64
	Description string
	Status      TimesheetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimesheetEntry is a timesheet joined with its owner.
type TimesheetEntry struct {
	Timesheet
	EmployeeName       string
	EmployeeSurname    string
	EmployeeEmail      string
	EmployeeDepartment string
}

// TotalHours returns the span between in and out in hours, rounded to two
// decimals.
func TotalHours(in, out time.Time) float64 {
	return math.Round(out.Sub(in).Hours()*100) / 100
}

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour, Minute, Second int
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q", s)
}

// ClockOf extracts the time of day from t.
func ClockOf(t time.Time) ClockTime {
	t = t.UTC()
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// On places the clock time on the given date.
func (c ClockTime) On(date time.Time) time.Time {
	d := Day(date)
	return d.Add(time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute + time.Duration(c.Second)*time.Second)
}

func (c ClockTime) String() string {
	if c.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
