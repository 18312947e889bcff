package aggregate

import (
	"fmt"
	"math"
	"slices"
)

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Mean returns the arithmetic mean; ok is false for no values.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Summary is a descriptive statistics row.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe summarises values. Std is the sample standard deviation, zero for a
// single value; quantiles interpolate linearly between order statistics.
func Describe(values []float64) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mean, _ := Mean(sorted)

	s := Summary{
		Count:  len(sorted),
		Mean:   mean,
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		ss := 0.0
		for _, v := range sorted {
			ss += (v - mean) * (v - mean)
		}
		s.Std = math.Sqrt(ss / float64(len(sorted)-1))
	}
	return s, true
}

// Quantile returns the q-th quantile of values, q in [0, 1].
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 || q < 0 || q > 1 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantile(sorted, q), true
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Bin is one equal-width histogram bin, [Lower, Upper), the last one closed.
type Bin struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Histogram splits the value range into bins equal-width bins. Percent is each
// bin's share of all values.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		bins = 1
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
		if i == bins-1 {
			out[i].Upper = hi
		}
		out[i].Label = fmt.Sprintf("%g-%g", RoundTo(out[i].Lower, 1), RoundTo(out[i].Upper, 1))
	}
	for _, v := range values {
		i := bins - 1
		if width > 0 {
			i = min(int((v-lo)/width), bins-1)
		}
		out[i].Count++
	}
	for i := range out {
		out[i].Percent = RoundTo(100*float64(out[i].Count)/float64(len(values)), 2)
	}
	return out
}

// Slope is the least-squares slope of ys over x = 0, 1, 2, ... ok is false for
// fewer than two points.
func Slope(ys []float64) (float64, bool) {
	n := float64(len(ys))
	if len(ys) < 2 {
		return 0, false
	}
	var sx, sy, sxy, sxx float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}
	return (n*sxy - sx*sy) / (n*sxx - sx*sx), true
}
