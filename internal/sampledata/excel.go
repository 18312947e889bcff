package sampledata

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// numericColumns are written as numbers so the reader sees what a real
// extract holds.
var numericColumns = map[string]bool{
	"AnioGraduacion.1":      true,
	"Anio.1":                true,
	"Mes.1":                 true,
	"SALARIO.1":             true,
	"Cantidad de empleados": true,
}

// Save writes the workbook to path as xlsx.
func (w *Workbook) Save(path, employmentSheet, titlesSheet string) error {
	const op = "sampledata.Workbook.Save"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", employmentSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := f.NewSheet(titlesSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeSheet(f, employmentSheet, w.Employment); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeSheet(f, titlesSheet, w.Titles); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	for i, r := range rows {
		cells := make([]any, len(r))
		for j, v := range r {
			cells[j] = v
			if i > 0 && j < len(header) && numericColumns[header[j]] && v != "" {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}
