package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timetrack/internal/apperror"
	"timetrack/internal/employee"
	"timetrack/internal/model"
)

func (h *Handler) createEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emp, err := h.employees.Create(c.Request.Context(), actor(c), employee.CreateInput{
		ID:         req.ID,
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Surname:    req.Surname,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, emp)
}

func (h *Handler) listEmployees(c *gin.Context) {
	f, err := employeeFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeEmployees(c, f)
}

func (h *Handler) listApprovedEmployees(c *gin.Context) {
	h.writeEmployees(c, employee.Filter{Status: model.EmployeeApproved})
}

func (h *Handler) writeEmployees(c *gin.Context, f employee.Filter) {
	list, err := h.employees.List(c.Request.Context(), actor(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employeesDTO(list)})
}

func employeeFilter(c *gin.Context) (employee.Filter, error) {
	f := employee.Filter{Department: c.Query("department")}
	if v := c.Query("role"); v != "" {
		role, err := model.ParseRole(v)
		if err != nil {
			return f, apperror.Validation(err.Error())
		}
		f.Role = role
	}
	if v := c.Query("status"); v != "" {
		st, err := model.ParseEmployeeStatus(v)
		if err != nil {
			return f, apperror.Validation(err.Error())
		}
		f.Status = st
	}
	return f, nil
}

func (h *Handler) getEmployee(c *gin.Context) {
	emp, err := h.employees.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func (h *Handler) updateEmployee(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emp, err := h.employees.Update(c.Request.Context(), actor(c), c.Param("id"), employee.UpdateInput{
		Name:       req.Name,
		Surname:    req.Surname,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func (h *Handler) setEmployeeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emp, err := h.employees.SetStatus(c.Request.Context(), actor(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func (h *Handler) createDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.employees.CreateDepartment(c.Request.Context(), actor(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) listDepartments(c *gin.Context) {
	list, err := h.employees.ListDepartments(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Department{}
	}
	c.JSON(http.StatusOK, gin.H{"departments": list})
}

func (h *Handler) departmentEmployees(c *gin.Context) {
	list, err := h.employees.DepartmentEmployees(c.Request.Context(), actor(c), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employeesDTO(list)})
}
