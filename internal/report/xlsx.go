package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"timetrack/internal/model"
)

const sheetName = "Timesheets"

var header = []any{
	"Employee ID", "Name", "Surname", "Email", "Department",
	"Date", "Clock In", "Clock Out", "Total Hours", "Status", "Description",
}

// WriteTimesheets renders entries as a single-sheet workbook.
func WriteTimesheets(w io.Writer, entries []model.TimesheetEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.EmployeeID, e.EmployeeName, e.EmployeeSurname, e.EmployeeEmail, e.EmployeeDepartment,
			e.Date.Format(model.DateLayout),
			model.ClockOf(e.ClockIn).String(),
			model.ClockOf(e.ClockOut).String(),
			e.TotalHours,
			string(e.Status),
			e.Description,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "K", 16); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return err
	}
	return nil
}
