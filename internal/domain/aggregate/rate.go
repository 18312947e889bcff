// Package aggregate holds the grouping and summary operations behind every
// page: rates per group, top-N shares, elapsed-month histograms, state
// transition pivots and descriptive statistics.
package aggregate

import (
	"slices"
)

// Rate is the share of distinct entities in a group meeting a condition.
type Rate struct {
	Group       string  `json:"group"`
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
	Rate        float64 `json:"rate"`
}

// Keys extracts the grouping key and the entity key of a row. An empty group
// key drops the row.
type Keys[T any] struct {
	Group  func(T) string
	Entity func(T) string
}

// RateByGroup computes count(distinct entity where cond) / count(distinct
// entity) for each group. Groups without entities are never reported. Groups
// are returned in ascending key order.
func RateByGroup[T any](rows []T, k Keys[T], cond func(T) bool) []Rate {
	return RateByGroupSplit(rows, rows, k, cond)
}

// RateByGroupSplit takes the numerator from num and the denominator from den.
// Numerator entities absent from the group's denominator are ignored so every
// rate stays within [0, 1].
func RateByGroupSplit[T any](num, den []T, k Keys[T], cond func(T) bool) []Rate {
	total := distinctByGroup(den, k, nil)
	hits := distinctByGroup(num, k, cond)

	out := make([]Rate, 0, len(total))
	for g, entities := range total {
		if len(entities) == 0 {
			continue
		}
		n := 0
		for e := range hits[g] {
			if _, ok := entities[e]; ok {
				n++
			}
		}
		out = append(out, Rate{
			Group:       g,
			Numerator:   n,
			Denominator: len(entities),
			Rate:        float64(n) / float64(len(entities)),
		})
	}
	slices.SortFunc(out, func(a, b Rate) int { return compareKeys(a.Group, b.Group) })
	return out
}

// CountDistinct counts distinct entities per group meeting cond (all rows when
// cond is nil).
func CountDistinct[T any](rows []T, k Keys[T], cond func(T) bool) map[string]int {
	sets := distinctByGroup(rows, k, cond)
	out := make(map[string]int, len(sets))
	for g, s := range sets {
		out[g] = len(s)
	}
	return out
}

// Distinct counts distinct entity keys among rows meeting cond.
func Distinct[T any](rows []T, entity func(T) string, cond func(T) bool) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if cond != nil && !cond(r) {
			continue
		}
		if e := entity(r); e != "" {
			seen[e] = struct{}{}
		}
	}
	return len(seen)
}

// Overall is the rate across all rows, reported as a single group. ok is false
// when there are no entities.
func Overall[T any](rows []T, entity func(T) string, cond func(T) bool) (Rate, bool) {
	den := Distinct(rows, entity, nil)
	if den == 0 {
		return Rate{}, false
	}
	num := Distinct(rows, entity, cond)
	return Rate{Numerator: num, Denominator: den, Rate: float64(num) / float64(den)}, true
}

func distinctByGroup[T any](rows []T, k Keys[T], cond func(T) bool) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, r := range rows {
		if cond != nil && !cond(r) {
			continue
		}
		g := k.Group(r)
		e := k.Entity(r)
		if g == "" || e == "" {
			continue
		}
		set, ok := out[g]
		if !ok {
			set = make(map[string]struct{})
			out[g] = set
		}
		set[e] = struct{}{}
	}
	return out
}
