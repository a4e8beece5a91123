package salary

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Salary"

var xlsxHeaders = []string{"Worker", "Role", "Site", "Days", "Daily rate", "Amount"}

// WriteXLSX renders the summary as a spreadsheet.
func (s *Summary) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("could not create sheet: %w", err)
	}
	f.SetActiveSheet(sheet)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("could not drop default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("could not create header style: %w", err)
	}

	for col, header := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return err
		}
	}

	for i, line := range s.Lines {
		values := []any{
			line.Name + " " + line.Surname,
			line.Role,
			line.Site,
			line.DaysPresent,
			line.DailyRate,
			line.Amount,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	totalRow := len(s.Lines) + 2
	labelCell, err := excelize.CoordinatesToCellName(len(xlsxHeaders)-1, totalRow)
	if err != nil {
		return err
	}
	totalCell, err := excelize.CoordinatesToCellName(len(xlsxHeaders), totalRow)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, labelCell, "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, totalCell, s.Total); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, labelCell, totalCell, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}
