package model

import (
	"fmt"
	"strconv"
	"strings"
)

// quarterMonths is the fixed observation calendar: one month per quarter.
var quarterMonths = map[int]int{2: 1, 5: 2, 9: 3, 11: 4}

// QuarterMonths lists the observation months in calendar order.
var QuarterMonths = []int{2, 5, 9, 11}

// Period is a (year, quarter) bucket.
type Period struct {
	Year    int
	Quarter int
}

// PeriodOf maps an observation month onto its quarter. Months outside the
// observation calendar are not part of any period.
func PeriodOf(year, month int) (Period, bool) {
	q, ok := quarterMonths[month]
	if !ok || year <= 0 {
		return Period{}, false
	}
	return Period{Year: year, Quarter: q}, true
}

// String renders "2024 Q1".
func (p Period) String() string {
	return fmt.Sprintf("%d Q%d", p.Year, p.Quarter)
}

// Before orders periods chronologically.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// ParsePeriod reads the "2024 Q1" form.
func ParsePeriod(s string) (Period, error) {
	y, q, ok := strings.Cut(strings.TrimSpace(s), " Q")
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	quarter, err := strconv.Atoi(q)
	if err != nil || quarter < 1 || quarter > 4 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	return Period{Year: year, Quarter: quarter}, nil
}

// QuarterLabel renders a quarter alone, e.g. "Q2".
func QuarterLabel(q int) string {
	return fmt.Sprintf("Q%d", q)
}
