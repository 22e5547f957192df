package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"minitimer/internal/core/model"
)

const sheetName = "Time entries"

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []model.TimeEntry) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	if err := writeRow(file, 1, headers); err != nil {
		return err
	}
	for i, entry := range entries {
		if err := writeRow(file, i+2, row(entry)); err != nil {
			return err
		}
	}

	if err := file.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze excel header: %w", err)
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}

func writeRow(file *excelize.File, rowNumber int, values []string) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNumber)
		if err := file.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}
