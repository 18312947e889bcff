package dataset

import "errors"

var (
	// ErrDataFileNotFound is returned when the workbook path does not exist.
	ErrDataFileNotFound = errors.New("data file not found")
	// ErrSheetNotFound is returned when the workbook lacks a requested sheet.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrEmptySheet is returned when a sheet has no header row.
	ErrEmptySheet = errors.New("sheet has no header row")
)
