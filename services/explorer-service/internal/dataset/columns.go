package dataset

import (
	"errors"
	"sort"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrColumnNotFound is returned for unknown column names
var ErrColumnNotFound = errors.New("column not found")

// ColumnInfo describes one column
type ColumnInfo struct {
	Name         string   `json:"name"`
	DType        string   `json:"dtype"`
	Kind         Kind     `json:"kind"`
	NonNullCount int      `json:"non_null_count"`
	NullCount    int      `json:"null_count"`
	UniqueCount  int      `json:"unique_count"`
	MemoryUsage  int      `json:"memory_usage"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Mean         *float64 `json:"mean,omitempty"`
	Median       *float64 `json:"median,omitempty"`
	Std          *float64 `json:"std,omitempty"`
	MostFrequent *string  `json:"most_frequent,omitempty"`
	AvgLength    *float64 `json:"avg_length,omitempty"`
}

// Column describes a named column
func Column(f *Frame, name string) (*ColumnInfo, error) {
	i, ok := f.ColumnIndex(name)
	if !ok {
		return nil, ErrColumnNotFound
	}
	values := f.column(i)
	missing := countMissing(values)
	info := &ColumnInfo{
		Name:         name,
		DType:        f.DType(i),
		Kind:         f.kinds[i],
		NonNullCount: len(values) - missing,
		NullCount:    missing,
		UniqueCount:  countUnique(values),
		MemoryUsage:  stringBytes(values),
	}

	if f.kinds[i] == KindNumeric {
		nums := f.numbers(i)
		if len(nums) > 0 {
			info.Min = round3(floats.Min(nums))
			info.Max = round3(floats.Max(nums))
			info.Mean = round3(stat.Mean(nums, nil))
			info.Median = round3(Median(nums))
		}
		if len(nums) > 1 {
			info.Std = round3(stat.StdDev(nums, nil))
		}
		return info, nil
	}

	if top, ok := MostFrequent(values); ok {
		info.MostFrequent = &top
	}
	total, present := 0, 0
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		total += utf8.RuneCountInString(v)
		present++
	}
	if present > 0 {
		info.AvgLength = round3(float64(total) / float64(present))
	}
	return info, nil
}

// ValueCount is a distinct value with its number of occurrences
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts counts present values, most frequent first, ties by first appearance
func ValueCounts(values []string) []ValueCount {
	index := make(map[string]int)
	counts := make([]ValueCount, 0)
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].Count > counts[b].Count })
	return counts
}

// MostFrequent returns the most common present value
func MostFrequent(values []string) (string, bool) {
	counts := ValueCounts(values)
	if len(counts) == 0 {
		return "", false
	}
	return counts[0].Value, true
}
