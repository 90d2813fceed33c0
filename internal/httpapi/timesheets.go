package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
	"timetrack/internal/report"
	"timetrack/internal/timesheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) createTimesheet(c *gin.Context) {
	var req createTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(c, apperror.Validation("date must be YYYY-MM-DD"))
		return
	}
	in, err := parseClock(req.ClockIn)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := parseClock(req.ClockOut)
	if err != nil {
		writeError(c, err)
		return
	}
	ts, err := h.timesheets.Submit(c.Request.Context(), actor(c), timesheet.Entry{
		Date:        date,
		ClockIn:     in,
		ClockOut:    out,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, timesheetDTO(ts))
}

func (h *Handler) listTimesheets(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.timesheets.List(c.Request.Context(), actor(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timesheets": entriesDTO(list)})
}

func (h *Handler) getTimesheet(c *gin.Context) {
	e, err := h.timesheets.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryDTO(e))
}

// employeeTimesheets lists an employee's timesheets, or returns the single
// one for ?date=.
func (h *Handler) employeeTimesheets(c *gin.Context) {
	ctx := c.Request.Context()
	if v := c.Query("date"); v != "" {
		date, err := model.ParseDate(v)
		if err != nil {
			writeError(c, apperror.Validation("date must be YYYY-MM-DD"))
			return
		}
		e, err := h.timesheets.GetForDate(ctx, actor(c), c.Param("id"), date)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entryDTO(e))
		return
	}

	status, err := statusQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.timesheets.ListForEmployee(ctx, actor(c), c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timesheets": entriesDTO(list)})
}

func (h *Handler) updateTimesheet(c *gin.Context) {
	var req updateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ed := timesheet.Edit{Description: req.Description}
	if req.ClockIn != nil {
		in, err := parseClock(*req.ClockIn)
		if err != nil {
			writeError(c, err)
			return
		}
		ed.ClockIn = &in
	}
	if req.ClockOut != nil {
		out, err := parseClock(*req.ClockOut)
		if err != nil {
			writeError(c, err)
			return
		}
		ed.ClockOut = &out
	}
	if req.Status != nil {
		st, err := parseStatus(*req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		ed.Status = &st
	}

	e, err := h.timesheets.Update(c.Request.Context(), actor(c), c.Param("id"), ed)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryDTO(e))
}

func (h *Handler) setTimesheetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := parseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	e, err := h.timesheets.SetStatus(c.Request.Context(), actor(c), c.Param("id"), st)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryDTO(e))
}

func (h *Handler) bulkTimesheetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := parseStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	n, err := h.timesheets.BulkSetStatus(c.Request.Context(), actor(c), c.Param("id"), st)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee_id": c.Param("id"), "status": st, "updated": n})
}

func (h *Handler) exportTimesheets(c *gin.Context) {
	status, err := statusQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.timesheets.Export(c.Request.Context(), actor(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteTimesheets(&buf, list); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timesheets.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseClock(s string) (model.ClockTime, error) {
	t, err := model.ParseClock(s)
	if err != nil {
		return model.ClockTime{}, apperror.Validation("times must be HH:MM or HH:MM:SS")
	}
	return t, nil
}

func parseStatus(s string) (model.TimesheetStatus, error) {
	st, err := model.ParseTimesheetStatus(s)
	if err != nil {
		return "", apperror.Validation(err.Error())
	}
	return st, nil
}

func statusQuery(c *gin.Context) (model.TimesheetStatus, error) {
	v := c.Query("status")
	if v == "" {
		return "", nil
	}
	return parseStatus(v)
}
