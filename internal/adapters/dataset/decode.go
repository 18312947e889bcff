package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/gradpulse/internal/domain/classify"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/schema"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// DecodeEmployment turns raw employment rows into records. The returned header
// tells which canonical fields the sheet carries.
func DecodeEmployment(t *Table) ([]model.GraduateRecord, schema.Header) {
	h := schema.Resolve(schema.Employment, t.Header)
	out := make([]model.GraduateRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		id := integral(h.Cell(row, schema.GraduateID))
		if id == "" {
			continue
		}
		out = append(out, model.GraduateRecord{
			GraduateID:       id,
			Cohort:           integral(h.Cell(row, schema.Cohort)),
			Level:            h.Cell(row, schema.Level),
			OfferType:        h.Cell(row, schema.OfferType),
			Faculty:          h.Cell(row, schema.Faculty),
			ProgramRaw:       h.Cell(row, schema.ProgramRaw),
			Program:          h.Cell(row, schema.Program),
			ObsYear:          parseInt(h.Cell(row, schema.ObsYear)),
			ObsMonth:         parseInt(h.Cell(row, schema.ObsMonth)),
			Salary:           parseFloat(h.Cell(row, schema.Salary)),
			EmployerTaxID:    integral(h.Cell(row, schema.EmployerTaxID)),
			EmployerName:     h.Cell(row, schema.EmployerName),
			Headcount:        parseFloat(h.Cell(row, schema.Headcount)),
			Sector:           h.Cell(row, schema.Sector),
			Formality:        classify.Formality(h.Cell(row, schema.Formality)),
			JobTitle:         h.Cell(row, schema.JobTitle),
			AffiliationStart: parseDate(h.Cell(row, schema.AffiliationStart)),
			GraduationDate:   parseDate(h.Cell(row, schema.GraduationDate)),
		})
	}
	return out, h
}

// DecodeTitles turns raw titles rows into records.
func DecodeTitles(t *Table) ([]model.TitleRecord, schema.Header) {
	h := schema.Resolve(schema.Titles, t.Header)
	out := make([]model.TitleRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		id := integral(h.Cell(row, schema.PersonID))
		if id == "" {
			continue
		}
		level := strings.ToUpper(h.Cell(row, schema.TitleLevel))
		out = append(out, model.TitleRecord{
			PersonID:     id,
			Institution:  strings.ToUpper(h.Cell(row, schema.Institution)),
			Faculty:      h.Cell(row, schema.TitleFaculty),
			Program:      h.Cell(row, schema.TitleProgram),
			LevelLabel:   level,
			Credential:   classify.Credential(level),
			RegisteredAt: parseDate(h.Cell(row, schema.RegisteredAt)),
		})
	}
	return out, h
}

// parseFloat coerces unparseable numbers to nil.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	v := parseFloat(s)
	if v == nil {
		return 0
	}
	return int(*v)
}

// integral renders whole numbers without a fractional part, so 2024.0 and
// 2024 read as the same cohort. Other values are returned as is.
func integral(s string) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) >= 1e15 {
		return s
	}
	return strconv.FormatInt(int64(v), 10)
}

// parseDate reads Excel serial dates and the common text layouts. Anything
// else is a null.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v <= 0 {
			return time.Time{}
		}
		t, err := excelize.ExcelDateToTime(v, false)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
