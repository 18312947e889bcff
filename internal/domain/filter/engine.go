package filter

import (
	"maps"
	"slices"
)

// Getter reads the value of a dimension from a row. CohortMulti is never
// passed; it reads Cohort. An empty string is a null and never becomes an
// option.
type Getter[T any] func(row T, d Dimension) string

// Selection is the chosen value per single-select dimension plus the chosen
// cohorts of the multi-select.
type Selection struct {
	Values  map[Dimension]string `json:"values"`
	Cohorts []string             `json:"cohorts,omitempty"`
}

// Get returns the chosen value of d, or its sentinel.
func (s Selection) Get(d Dimension) string {
	if v, ok := s.Values[d]; ok && !IsAll(v) {
		return v
	}
	return d.All()
}

// IsSet reports whether d restricts rows.
func (s Selection) IsSet(d Dimension) bool {
	return !IsAll(s.Values[d])
}

// With returns a copy of s with d set to v.
func (s Selection) With(d Dimension, v string) Selection {
	out := Selection{Values: maps.Clone(s.Values), Cohorts: slices.Clone(s.Cohorts)}
	if out.Values == nil {
		out.Values = make(map[Dimension]string)
	}
	if d == CohortMulti {
		out.Cohorts = []string{v}
		return out
	}
	out.Values[d] = v
	return out
}

// Result is the outcome of one Apply.
type Result[T any] struct {
	Rows      []T
	Selection Selection
	Options   map[Dimension][]string
	Enabled   []Dimension
}

// Empty reports that the filters left no rows.
func (r Result[T]) Empty() bool {
	return len(r.Rows) == 0
}

// Apply runs the enabled dimensions in cascade order over rows. The previous
// selection is re-validated against the options left at each step: a value
// that is no longer offered falls back to the sentinel. Rows are returned
// unchanged when no dimension restricts them.
func Apply[T any](rows []T, get Getter[T], enabled []Dimension, prev Selection) Result[T] {
	on := make(map[Dimension]bool, len(enabled))
	for _, d := range enabled {
		on[d] = true
	}

	res := Result[T]{
		Selection: Selection{Values: make(map[Dimension]string)},
		Options:   make(map[Dimension][]string),
	}
	current := rows
	for _, d := range order {
		if !on[d] {
			continue
		}
		res.Enabled = append(res.Enabled, d)

		if d == CohortMulti {
			opts := options(current, get, Cohort)
			chosen := chooseCohorts(prev.Cohorts, opts)
			res.Options[d] = opts
			res.Selection.Cohorts = chosen
			current = keep(current, get, Cohort, chosen...)
			continue
		}

		opts := options(current, get, d)
		res.Options[d] = opts
		v := prev.Get(d)
		if IsAll(v) || !slices.Contains(opts, v) {
			res.Selection.Values[d] = d.All()
			continue
		}
		res.Selection.Values[d] = v
		current = keep(current, get, d, v)
	}
	res.Rows = current
	return res
}

// options lists the sorted distinct non-null values of d.
func options[T any](rows []T, get Getter[T], d Dimension) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if v := get(r, d); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.SortFunc(out, compareValues)
	return out
}

func keep[T any](rows []T, get Getter[T], d Dimension, values ...string) []T {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[get(r, d)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// chooseCohorts keeps the previously chosen cohorts that are still offered,
// bounded to MaxCohorts of the most recent. With nothing valid left it falls
// back to the DefaultCohorts most recent options.
func chooseCohorts(prev, opts []string) []string {
	valid := make([]string, 0, len(prev))
	for _, c := range prev {
		if slices.Contains(opts, c) && !slices.Contains(valid, c) {
			valid = append(valid, c)
		}
	}
	slices.SortFunc(valid, compareValues)
	if len(valid) < MinCohorts {
		valid = mostRecent(opts, DefaultCohorts)
	}
	return mostRecent(valid, MaxCohorts)
}

func mostRecent(sorted []string, n int) []string {
	if len(sorted) <= n {
		return slices.Clone(sorted)
	}
	return slices.Clone(sorted[len(sorted)-n:])
}
