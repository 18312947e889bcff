// Package filter implements cascading categorical filters: each enabled
// dimension offers only the values left after the dimensions before it have
// been applied.
package filter

import (
	"cmp"
	"slices"
	"strconv"
)

// Dimension is a filterable categorical attribute.
type Dimension string

const (
	Level            Dimension = "level"
	OfferType        Dimension = "offer_type"
	Institution      Dimension = "institution"
	Faculty          Dimension = "faculty"
	Program          Dimension = "program"
	Cohort           Dimension = "cohort"
	CohortMulti      Dimension = "cohorts"
	FormalEmployment Dimension = "formal"
)

// Sentinels meaning "no restriction".
const (
	AllMasculine = "Todos"
	AllFeminine  = "Todas"
)

// Cohort multi-select bounds.
const (
	MinCohorts     = 1
	MaxCohorts     = 3
	DefaultCohorts = 2
)

// order is the fixed priority in which dimensions cascade.
var order = []Dimension{Level, OfferType, Institution, Faculty, Program, Cohort, CohortMulti, FormalEmployment}

var labels = map[Dimension]string{
	Level:            "Nivel",
	OfferType:        "Oferta Actual",
	Institution:      "Institución",
	Faculty:          "Facultad",
	Program:          "Carrera",
	Cohort:           "Cohorte (Año Graduación)",
	CohortMulti:      "Cohortes (Año Graduación)",
	FormalEmployment: "Trabajo Formal",
}

// Order returns the cascade order.
func Order() []Dimension {
	return slices.Clone(order)
}

// Label is the display name of the dimension.
func (d Dimension) Label() string {
	if l, ok := labels[d]; ok {
		return l
	}
	return string(d)
}

// All returns the sentinel shown as the first option of d.
func (d Dimension) All() string {
	switch d {
	case Faculty, Program, Institution:
		return AllFeminine
	default:
		return AllMasculine
	}
}

// Multi reports whether d takes several values.
func (d Dimension) Multi() bool {
	return d == CohortMulti
}

// Known reports whether d is one of the recognised dimensions.
func (d Dimension) Known() bool {
	_, ok := labels[d]
	return ok
}

// IsAll reports whether v disables filtering on any dimension.
func IsAll(v string) bool {
	return v == "" || v == AllMasculine || v == AllFeminine
}

// compareValues sorts numerically when both values are integers, e.g. cohorts.
func compareValues(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}
