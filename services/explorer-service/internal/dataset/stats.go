package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds describe() style statistics of a numeric column.
// Values that are undefined for the sample size are nil.
type ColumnSummary struct {
	Column   string   `json:"column"`
	Count    int      `json:"count"`
	Mean     *float64 `json:"mean"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	P25      *float64 `json:"25%"`
	P50      *float64 `json:"50%"`
	P75      *float64 `json:"75%"`
	Max      *float64 `json:"max"`
	Median   *float64 `json:"median"`
	Mode     *float64 `json:"mode"`
	Variance *float64 `json:"variance"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

// Summary describes every numeric column, in frame order
func Summary(f *Frame) []ColumnSummary {
	summaries := make([]ColumnSummary, 0)
	for i, name := range f.Columns {
		if f.kinds[i] != KindNumeric {
			continue
		}
		summaries = append(summaries, describe(name, f.numbers(i)))
	}
	return summaries
}

func describe(name string, values []float64) ColumnSummary {
	s := ColumnSummary{Column: name, Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := sortedCopy(values)
	s.Mean = round3(stat.Mean(values, nil))
	s.Min = round3(floats.Min(values))
	s.Max = round3(floats.Max(values))
	s.P25 = round3(Quantile(sorted, 0.25))
	s.P50 = round3(Quantile(sorted, 0.5))
	s.P75 = round3(Quantile(sorted, 0.75))
	s.Median = s.P50
	s.Mode = round3(Mode(sorted))

	if len(values) > 1 {
		s.Std = round3(stat.StdDev(values, nil))
		s.Variance = round3(stat.Variance(values, nil))
	}
	if len(values) > 2 {
		s.Skewness = round3(stat.Skew(values, nil))
	}
	if len(values) > 3 {
		s.Kurtosis = round3(stat.ExKurtosis(values, nil))
	}
	return s
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Quantile interpolates linearly between the closest ranks of sorted values
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Mode returns the most frequent of sorted values, the smallest one on ties
func Mode(sorted []float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}

// Median of unsorted values
func Median(values []float64) float64 {
	return Quantile(sortedCopy(values), 0.5)
}

// Correlation returns the Pearson correlation matrix of the named numeric columns,
// using the rows where both columns are present
func Correlation(f *Frame, columns []string) [][]float64 {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i], _ = f.ColumnIndex(c)
	}

	matrix := make([][]float64, len(columns))
	for a := range columns {
		matrix[a] = make([]float64, len(columns))
		for b := range columns {
			if a == b {
				matrix[a][b] = 1
				continue
			}
			if b < a {
				matrix[a][b] = matrix[b][a]
				continue
			}
			xs, ys := pairs(f, idx[a], idx[b])
			r := math.NaN()
			if len(xs) > 1 {
				r = stat.Correlation(xs, ys, nil)
			}
			matrix[a][b] = r
		}
	}
	return matrix
}

// pairs returns the values of two columns on rows where both are present
func pairs(f *Frame, a, b int) ([]float64, []float64) {
	xs := make([]float64, 0, f.Len())
	ys := make([]float64, 0, f.Len())
	for r := range f.Rows {
		x, okX := f.Number(r, a)
		y, okY := f.Number(r, b)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// Pairs returns the values of two named numeric columns on rows where both are present
func Pairs(f *Frame, x, y string) ([]float64, []float64) {
	a, _ := f.ColumnIndex(x)
	b, _ := f.ColumnIndex(y)
	return pairs(f, a, b)
}

// LinearFit returns the least squares intercept and slope of y on x
func LinearFit(xs, ys []float64) (intercept, slope float64) {
	return stat.LinearRegression(xs, ys, nil, false)
}

// Round rounds to the given number of decimals
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func round3(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := Round(v, 3)
	return &r
}
