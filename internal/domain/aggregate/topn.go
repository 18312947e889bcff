package aggregate

import (
	"cmp"
	"slices"
	"strconv"
)

// Share is a category count with its percentage of the grand total.
type Share struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// TopN counts the values, sorts descending by count (ties by label) and keeps
// the first n; n <= 0 keeps all. Percentages are of the total over every
// category, rounded to two decimals, so a truncated list sums to at most 100.
func TopN(values []string, n int) []Share {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	return TopNCounts(counts, n)
}

// TopNCounts is TopN over precomputed counts.
func TopNCounts(counts map[string]int, n int) []Share {
	total := 0
	out := make([]Share, 0, len(counts))
	for label, c := range counts {
		if c <= 0 {
			continue
		}
		total += c
		out = append(out, Share{Label: label, Count: c})
	}
	slices.SortFunc(out, func(a, b Share) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Percent = RoundTo(100*float64(out[i].Count)/float64(total), 2)
	}
	return out
}

// Ordered returns the shares in the given label order, inserting zero rows for
// missing labels. Labels not listed are appended after, in their current order.
func Ordered(shares []Share, order []string) []Share {
	byLabel := make(map[string]Share, len(shares))
	for _, s := range shares {
		byLabel[s.Label] = s
	}
	out := make([]Share, 0, len(order)+len(shares))
	for _, l := range order {
		s, ok := byLabel[l]
		if !ok {
			s = Share{Label: l}
		}
		out = append(out, s)
		delete(byLabel, l)
	}
	for _, s := range shares {
		if _, ok := byLabel[s.Label]; ok {
			out = append(out, s)
		}
	}
	return out
}

func compareKeys(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}
