package httpapi

import (
	"time"

	"timetrack/internal/model"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createEmployeeRequest struct {
	ID         string `json:"employee_id"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Surname    string `json:"surname" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department_name"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Surname    *string `json:"surname"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	Department *string `json:"department_name"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

type createTimesheetRequest struct {
	Date        string `json:"date" binding:"required"`
	ClockIn     string `json:"clock_in" binding:"required"`
	ClockOut    string `json:"clock_out" binding:"required"`
	Description string `json:"description"`
}

type updateTimesheetRequest struct {
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type ownerResponse struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Department string `json:"department_name"`
}

type timesheetResponse struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employee_id"`
	Date        string         `json:"date"`
	ClockIn     string         `json:"clock_in"`
	ClockOut    string         `json:"clock_out"`
	TotalHours  float64        `json:"total_hours"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Employee    *ownerResponse `json:"employee,omitempty"`
}

func timesheetDTO(ts model.Timesheet) timesheetResponse {
	return timesheetResponse{
		ID:          ts.ID,
		EmployeeID:  ts.EmployeeID,
		Date:        ts.Date.Format(model.DateLayout),
		ClockIn:     model.ClockOf(ts.ClockIn).String(),
		ClockOut:    model.ClockOf(ts.ClockOut).String(),
		TotalHours:  ts.TotalHours,
		Description: ts.Description,
		Status:      string(ts.Status),
		CreatedAt:   ts.CreatedAt,
		UpdatedAt:   ts.UpdatedAt,
	}
}

func entryDTO(e model.TimesheetEntry) timesheetResponse {
	r := timesheetDTO(e.Timesheet)
	r.Employee = &ownerResponse{
		Name:       e.EmployeeName,
		Surname:    e.EmployeeSurname,
		Email:      e.EmployeeEmail,
		Department: e.EmployeeDepartment,
	}
	return r
}

func entriesDTO(es []model.TimesheetEntry) []timesheetResponse {
	out := make([]timesheetResponse, 0, len(es))
	for _, e := range es {
		out = append(out, entryDTO(e))
	}
	return out
}

func employeesDTO(es []model.Employee) []model.Employee {
	if es == nil {
		return []model.Employee{}
	}
	return es
}
