package dataset

import "strings"

// QualityReport describes missing data, duplicates and outliers of a frame
type QualityReport struct {
	MissingValues      map[string]int    `json:"missing_values"`
	DuplicateRows      int               `json:"duplicate_rows"`
	DataTypes          map[string]string `json:"data_types"`
	UniqueValues       map[string]int    `json:"unique_values"`
	MemoryUsage        int               `json:"memory_usage"`
	NumericColumns     int               `json:"numeric_columns"`
	CategoricalColumns int               `json:"categorical_columns"`
	Outliers           map[string]int    `json:"outliers"`
}

// Quality builds the quality report of a frame
func Quality(f *Frame) QualityReport {
	report := QualityReport{
		MissingValues: make(map[string]int, len(f.Columns)),
		DataTypes:     make(map[string]string, len(f.Columns)),
		UniqueValues:  make(map[string]int, len(f.Columns)),
		Outliers:      make(map[string]int),
	}

	for i, name := range f.Columns {
		values := f.column(i)
		report.MissingValues[name] = countMissing(values)
		report.DataTypes[name] = f.DType(i)
		report.UniqueValues[name] = countUnique(values)
		report.MemoryUsage += stringBytes(values)

		switch f.kinds[i] {
		case KindNumeric:
			report.NumericColumns++
			report.Outliers[name] = countOutliers(f.numbers(i))
		default:
			report.CategoricalColumns++
		}
	}
	report.DuplicateRows = countDuplicates(f.Rows)
	return report
}

func countMissing(values []string) int {
	n := 0
	for _, v := range values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

func countUnique(values []string) int {
	seen := make(map[string]struct{})
	for _, v := range values {
		if !IsMissing(v) {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

func stringBytes(values []string) int {
	n := 0
	for _, v := range values {
		n += len(v)
	}
	return n
}

// countDuplicates counts rows identical to an earlier row
func countDuplicates(rows [][]string) int {
	seen := make(map[string]struct{}, len(rows))
	dups := 0
	for _, row := range rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// IQRBounds returns the Tukey fences of values
func IQRBounds(values []float64) (lower, upper float64) {
	sorted := sortedCopy(values)
	q1, q3 := Quantile(sorted, 0.25), Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

func countOutliers(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	lower, upper := IQRBounds(values)
	n := 0
	for _, v := range values {
		if v < lower || v > upper {
			n++
		}
	}
	return n
}
