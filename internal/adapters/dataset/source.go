package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/xuri/excelize/v2"
)

// Source reads the raw rows of one named sheet, header row first.
type Source interface {
	Rows(ctx context.Context, sheet string) ([][]string, error)
	Name() string
}

// ExcelSource reads sheets from an xlsx workbook on disk.
type ExcelSource struct {
	path string
}

// NewExcelSource returns a source for the workbook at path. The file is opened
// on every Rows call; callers cache the result.
func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{path: path}
}

// Name returns the workbook path.
func (s *ExcelSource) Name() string { return s.path }

// Rows returns the raw cell values of sheet. Cells are read unformatted so
// dates arrive as Excel serial numbers.
func (s *ExcelSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	const op = "dataset.ExcelSource.Rows"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrDataFileNotFound, s.path)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %w", op, s.path, err)
	}
	defer f.Close()

	if !slices.Contains(f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrSheetNotFound, sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", op, sheet, err)
	}
	return rows, nil
}

// MemorySource serves fixed rows per sheet.
type MemorySource map[string][][]string

// Name implements Source.
func (MemorySource) Name() string { return "memory" }

// Rows implements Source.
func (m MemorySource) Rows(_ context.Context, sheet string) ([][]string, error) {
	rows, ok := m[sheet]
	if !ok {
		return nil, fmt.Errorf("dataset.MemorySource.Rows: %w: %s", ErrSheetNotFound, sheet)
	}
	return rows, nil
}
