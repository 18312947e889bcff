// Package dedupe resolves raw rows that share an observation unit down to one
// row per unit.
package dedupe

import (
	"github.com/okian/gradpulse/internal/domain/model"
)

// By keeps one row per key. A later row replaces the kept one only when
// better(candidate, kept) holds, so ties keep the first row in input order.
// Output order follows the first appearance of each key.
func By[T any](rows []T, key func(T) string, better func(candidate, kept T) bool) []T {
	seen := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		i, ok := seen[k]
		if !ok {
			seen[k] = len(out)
			out = append(out, r)
			continue
		}
		if better(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

// HigherSalary prefers a present salary over an absent one and a larger one
// over a smaller one.
func HigherSalary(candidate, kept model.GraduateRecord) bool {
	switch {
	case candidate.Salary == nil:
		return false
	case kept.Salary == nil:
		return true
	default:
		return *candidate.Salary > *kept.Salary
	}
}

// Later prefers the more recent observation month, then the higher salary.
func Later(candidate, kept model.GraduateRecord) bool {
	if candidate.ObsYear != kept.ObsYear {
		return candidate.ObsYear > kept.ObsYear
	}
	if candidate.ObsMonth != kept.ObsMonth {
		return candidate.ObsMonth > kept.ObsMonth
	}
	return HigherSalary(candidate, kept)
}

// HighestSalaryPerMonth leaves one row per graduate and observation month,
// the one with the highest salary.
func HighestSalaryPerMonth(rows []model.GraduateRecord) []model.GraduateRecord {
	return By(rows, func(r model.GraduateRecord) string {
		return r.GraduateID + "|" + r.MonthKey()
	}, HigherSalary)
}

// HighestSalaryPerPeriod leaves one row per graduate and quarter. Rows outside
// the observation calendar are dropped.
func HighestSalaryPerPeriod(rows []model.GraduateRecord) []model.GraduateRecord {
	inCalendar := make([]model.GraduateRecord, 0, len(rows))
	for _, r := range rows {
		if _, ok := r.Period(); ok {
			inCalendar = append(inCalendar, r)
		}
	}
	return By(inCalendar, func(r model.GraduateRecord) string {
		p, _ := r.Period()
		return r.GraduateID + "|" + p.String()
	}, HigherSalary)
}

// LatestPerGraduate leaves each graduate's most recent observation.
func LatestPerGraduate(rows []model.GraduateRecord) []model.GraduateRecord {
	return By(rows, func(r model.GraduateRecord) string { return r.GraduateID }, Later)
}
