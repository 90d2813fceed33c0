// Package httpapi exposes the services over HTTP with gin.
package httpapi

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetrack/internal/apperror"
	"timetrack/internal/auth"
	"timetrack/internal/employee"
	"timetrack/internal/model"
	"timetrack/internal/timesheet"
)

const forgotPasswordReply = "if the account exists, a password reset email has been sent"

// Handler wires HTTP routes to the services.
type Handler struct {
	auth       *auth.Authenticator
	employees  *employee.Service
	timesheets *timesheet.Service
}

func New(a *auth.Authenticator, employees *employee.Service, timesheets *timesheet.Service) *Handler {
	return &Handler{auth: a, employees: employees, timesheets: timesheets}
}

// Register mounts every route under /v1. loginLimit guards the
// unauthenticated credential endpoints; it may be nil.
func (h *Handler) Register(r gin.IRouter, loginLimit gin.HandlerFunc) {
	v1 := r.Group("/v1")

	public := v1.Group("/auth")
	if loginLimit != nil {
		public.Use(loginLimit)
	}
	public.POST("/login", h.login)
	public.POST("/forgot-password", h.forgotPassword)
	public.POST("/reset-password", h.resetPassword)

	authed := v1.Group("", auth.RequireSession(h.auth))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/auth/me", h.me)

	authed.POST("/employees", h.createEmployee)
	authed.GET("/employees", h.listEmployees)
	authed.GET("/employees/approved", h.listApprovedEmployees)
	authed.GET("/employees/:id", h.getEmployee)
	authed.PUT("/employees/:id", h.updateEmployee)
	authed.PUT("/employees/:id/status", h.setEmployeeStatus)
	authed.GET("/employees/:id/timesheets", h.employeeTimesheets)
	authed.PUT("/employees/:id/timesheets/status", h.bulkTimesheetStatus)

	authed.POST("/departments", h.createDepartment)
	authed.GET("/departments", h.listDepartments)
	authed.GET("/departments/:name/employees", h.departmentEmployees)

	authed.POST("/timesheets", h.createTimesheet)
	authed.GET("/timesheets", h.listTimesheets)
	authed.GET("/timesheets/:id", h.getTimesheet)
	authed.PUT("/timesheets/:id", h.updateTimesheet)
	authed.PUT("/timesheets/:id/status", h.setTimesheetStatus)

	authed.GET("/reports/timesheets.xlsx", h.exportTimesheets)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.Token,
		"token_type":   "bearer",
		"expires_at":   sess.ExpiresAt.Unix(),
		"employee":     sess.Employee,
	})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		log.Printf("forgot password: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), auth.CurrentToken(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, actor(c))
}

func actor(c *gin.Context) model.Employee {
	emp, _ := auth.CurrentEmployee(c)
	return emp
}

// writeError answers with the error's status. Internal errors are logged
// and never shown to the client.
func writeError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apperror.Message(err)})
}
