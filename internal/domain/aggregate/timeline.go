package aggregate

import (
	"fmt"
	"slices"
	"time"
)

// MonthsBetween returns the whole months elapsed from start to end: the year
// delta times twelve plus the month delta, less one when end falls on an
// earlier day of the month than start. ok is false for missing dates and for
// end before start.
func MonthsBetween(start, end time.Time) (int, bool) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0, false
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0, false
	}
	return months, true
}

// MonthBucket counts entities whose elapsed time is Months whole months.
type MonthBucket struct {
	Months  int     `json:"months"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MonthLabel renders an elapsed month count for display.
func MonthLabel(m int) string {
	switch m {
	case 0:
		return "Menos de un mes"
	case 1:
		return "1 mes"
	default:
		return fmt.Sprintf("%d meses", m)
	}
}

// MonthHistogram buckets month counts, ascending. Negative values are dropped.
func MonthHistogram(months []int) []MonthBucket {
	counts := make(map[int]int)
	total := 0
	for _, m := range months {
		if m < 0 {
			continue
		}
		counts[m]++
		total++
	}
	out := make([]MonthBucket, 0, len(counts))
	for m, c := range counts {
		out = append(out, MonthBucket{
			Months:  m,
			Label:   MonthLabel(m),
			Count:   c,
			Percent: RoundTo(100*float64(c)/float64(total), 2),
		})
	}
	slices.SortFunc(out, func(a, b MonthBucket) int { return a.Months - b.Months })
	return out
}

// Mode returns the most frequent bucket, the lowest month on ties.
func Mode(buckets []MonthBucket) (MonthBucket, bool) {
	if len(buckets) == 0 {
		return MonthBucket{}, false
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.Count > best.Count || (b.Count == best.Count && b.Months < best.Months) {
			best = b
		}
	}
	return best, true
}
