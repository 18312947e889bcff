// Package model contains the records decoded from the workbook and the small
// value types derived from them.
package model

import (
	"fmt"
	"time"
)

// FormalStatus is the canonical employment-formality category.
type FormalStatus int

const (
	FormalUnknown FormalStatus = iota
	FormalDependent
	VoluntaryAffiliate
)

// Labels as shown in filter options.
const (
	LabelFormalDependent    = "Relación de Dependencia"
	LabelVoluntaryAffiliate = "Afiliado Voluntario"
	LabelFormalUnknown      = "Desconocido"
)

func (s FormalStatus) String() string {
	switch s {
	case FormalDependent:
		return LabelFormalDependent
	case VoluntaryAffiliate:
		return LabelVoluntaryAffiliate
	default:
		return LabelFormalUnknown
	}
}

// IsFormal reports affiliation to social security, contracted or voluntary.
func (s FormalStatus) IsFormal() bool {
	return s == FormalDependent || s == VoluntaryAffiliate
}

// GraduateRecord is one graduate observed in one month.
type GraduateRecord struct {
	GraduateID string
	Cohort     string
	Level      string
	OfferType  string
	Faculty    string
	ProgramRaw string
	Program    string

	ObsYear  int
	ObsMonth int

	Salary        *float64
	EmployerTaxID string
	EmployerName  string
	Headcount     *float64
	Sector        string
	Formality     FormalStatus
	JobTitle      string

	AffiliationStart time.Time
	GraduationDate   time.Time
}

// Employed reports a formal job in the month: a salary or an employer on file.
func (r GraduateRecord) Employed() bool {
	return r.Salary != nil || r.EmployerTaxID != ""
}

// Period returns the quarter label of the observation month.
func (r GraduateRecord) Period() (Period, bool) {
	return PeriodOf(r.ObsYear, r.ObsMonth)
}

// MonthKey identifies the observation month, e.g. 2024-05.
func (r GraduateRecord) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", r.ObsYear, r.ObsMonth)
}

// SalaryOr returns the salary or def when absent.
func (r GraduateRecord) SalaryOr(def float64) float64 {
	if r.Salary == nil {
		return def
	}
	return *r.Salary
}
