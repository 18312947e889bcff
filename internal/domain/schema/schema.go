// Package schema enumerates every canonical field read from the workbook and
// maps raw spreadsheet headers onto them. Nothing else in the module refers to
// a raw column name.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a page needs a field the sheet does not carry.
var ErrMissingColumn = errors.New("missing column")

// Field is a canonical column of either sheet.
type Field int

// Employment sheet fields.
const (
	GraduateID Field = iota + 1
	Cohort
	Level
	OfferType
	Faculty
	ProgramRaw
	Program
	ObsYear
	ObsMonth
	Salary
	EmployerTaxID
	EmployerName
	Headcount
	Sector
	Formality
	AffiliationStart
	GraduationDate
	JobTitle
)

// Titles sheet fields.
const (
	PersonID Field = iota + 100
	Institution
	TitleFaculty
	TitleProgram
	TitleLevel
	RegisteredAt
)

var fieldNames = map[Field]string{
	GraduateID:       "graduate_id",
	Cohort:           "cohort",
	Level:            "level",
	OfferType:        "offer_type",
	Faculty:          "faculty",
	ProgramRaw:       "program_raw",
	Program:          "program",
	ObsYear:          "obs_year",
	ObsMonth:         "obs_month",
	Salary:           "salary",
	EmployerTaxID:    "employer_tax_id",
	EmployerName:     "employer_name",
	Headcount:        "headcount",
	Sector:           "sector",
	Formality:        "formality",
	AffiliationStart: "affiliation_start",
	GraduationDate:   "graduation_date",
	JobTitle:         "job_title",
	PersonID:         "person_id",
	Institution:      "institution",
	TitleFaculty:     "title_faculty",
	TitleProgram:     "title_program",
	TitleLevel:       "title_level",
	RegisteredAt:     "registered_at",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Employment maps raw employment-sheet headers to fields. Several raw headers
// may feed one field; the first present wins.
var Employment = []Column{
	{Field: GraduateID, Raw: []string{"IdentificacionBanner.1", "IdentificacionBanner"}},
	{Field: Cohort, Raw: []string{"AnioGraduacion.1", "AnioGraduacion"}},
	{Field: Level, Raw: []string{"regimen.1", "regimen", "Nivel"}},
	{Field: OfferType, Raw: []string{"Oferta actual", "Oferta Actual"}},
	{Field: Faculty, Raw: []string{"FACULTAD", "Facultad"}},
	{Field: ProgramRaw, Raw: []string{"Carrera.1", "Carrera"}},
	{Field: Program, Raw: []string{"CarreraHomologada.1", "CarreraHomologada"}},
	{Field: ObsYear, Raw: []string{"Anio.1", "Anio"}},
	{Field: ObsMonth, Raw: []string{"Mes.1", "Mes"}},
	{Field: Salary, Raw: []string{"SALARIO.1", "SALARIO"}},
	{Field: EmployerTaxID, Raw: []string{"RUCEMP.1", "RUCEMP"}},
	{Field: EmployerName, Raw: []string{"NOMEMP.1", "NOMEMP"}},
	{Field: Headcount, Raw: []string{"Cantidad de empleados"}},
	{Field: Sector, Raw: []string{"SECTOR", "Sector"}},
	{Field: Formality, Raw: []string{"Empleo formal"}},
	{Field: AffiliationStart, Raw: []string{"FECINGAFI.1", "FECINGAFI"}},
	{Field: GraduationDate, Raw: []string{"FechaGraduacion.1", "FechaGraduacion"}},
	{Field: JobTitle, Raw: []string{"OCUAFI.1", "OCUAFI"}},
}

// Titles maps raw titles-sheet headers to fields.
var Titles = []Column{
	{Field: PersonID, Raw: []string{"IDENTIFICACION", "IDENTIFICACIÓN"}},
	{Field: Institution, Raw: []string{"INSTITUCIÓN DE EDUCACIÓN SUPERIOR", "INSTITUCION DE EDUCACION SUPERIOR"}},
	{Field: TitleFaculty, Raw: []string{"FACULTAD"}},
	{Field: TitleProgram, Raw: []string{"CARRERA"}},
	{Field: TitleLevel, Raw: []string{"NIVEL ACADÉMICA", "NIVEL ACADEMICA", "NIVEL ACADÉMICO"}},
	{Field: RegisteredAt, Raw: []string{"FECHA DE REGISTRO"}},
}

// Column binds a canonical field to its accepted raw headers.
type Column struct {
	Field Field
	Raw   []string
}

// Header is a resolved header row: field -> column index.
type Header struct {
	index map[Field]int
}

// Resolve matches a raw header row against the column set. Header comparison
// ignores case and surrounding whitespace.
func Resolve(columns []Column, header []string) Header {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	h := Header{index: make(map[Field]int, len(columns))}
	for _, c := range columns {
		for _, raw := range c.Raw {
			if i, ok := pos[normalize(raw)]; ok {
				h.index[c.Field] = i
				break
			}
		}
	}
	return h
}

// Index returns the column index of f.
func (h Header) Index(f Field) (int, bool) {
	i, ok := h.index[f]
	return i, ok
}

// Has reports whether the header carries f.
func (h Header) Has(f Field) bool {
	_, ok := h.index[f]
	return ok
}

// Cell returns the raw value of f in row, or "" when absent.
func (h Header) Cell(row []string, f Field) string {
	i, ok := h.index[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Require fails with ErrMissingColumn naming every absent field.
func (h Header) Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if !h.Has(f) {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
