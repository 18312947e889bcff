// Package narrate fills insight templates with values computed elsewhere.
package narrate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingValue is returned when a template names a value that was not supplied.
var ErrMissingValue = errors.New("missing template value")

// Values maps placeholder names to already formatted text.
type Values map[string]string

// Narrate replaces every {name} placeholder in template with values[name].
// Text without a closing brace is copied as is.
func Narrate(template string, values Values) (string, error) {
	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		name := rest[open+1 : open+end]
		v, ok := values[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
		b.WriteString(rest[:open])
		b.WriteString(v)
		rest = rest[open+end+1:]
	}
}

// Must is Narrate for templates owned by the caller; a missing value panics.
func Must(template string, values Values) string {
	s, err := Narrate(template, values)
	if err != nil {
		panic(err)
	}
	return s
}

// Percent renders a percentage value with the given decimals, e.g. 45.3%.
func Percent(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64) + "%"
}

// Ratio renders a [0, 1] ratio as a percentage.
func Ratio(r float64, decimals int) string {
	return Percent(r*100, decimals)
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	if n < 0 {
		return "-" + Count(-n)
	}
	if n < 1000 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%s,%03d", Count(n/1000), n%1000)
}

// Money renders a dollar amount with two decimals, e.g. $1,234.50.
func Money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(v*100 + 0.5)
	return fmt.Sprintf("%s$%s.%02d", sign, Count(int(cents/100)), cents%100)
}

// Decimal renders v with the given decimals.
func Decimal(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Months renders a whole month count in words, e.g. "3 meses".
func Months(m int) string {
	switch m {
	case 0:
		return "menos de un mes"
	case 1:
		return "1 mes"
	default:
		return strconv.Itoa(m) + " meses"
	}
}

// Years renders a duration in years with one decimal.
func Years(v float64) string {
	return Decimal(v, 1) + " años"
}
