package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Filter types
const (
	FilterEquals   = "equals"
	FilterContains = "contains"
	FilterRange    = "range"
	FilterIn       = "in"
)

// Filter narrows the rows of a frame on one column.
// Value is a scalar for equals and contains, a [min, max] pair for range and a list for in.
type Filter struct {
	Column string `json:"column" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=equals contains range in"`
	Value  any    `json:"value"`
}

// Apply filters the frame in order. Filters on unknown columns are skipped.
func Apply(f *Frame, filters []Filter) (*Frame, error) {
	out := f
	for _, flt := range filters {
		col, ok := out.ColumnIndex(flt.Column)
		if !ok {
			continue
		}
		match, err := matcher(out.kinds[col], flt)
		if err != nil {
			return nil, err
		}
		keep := make([]int, 0, out.Len())
		for r, row := range out.Rows {
			if match(row[col]) {
				keep = append(keep, r)
			}
		}
		out = out.Select(keep)
	}
	return out, nil
}

func matcher(kind Kind, flt Filter) (func(string) bool, error) {
	switch flt.Type {
	case FilterEquals:
		want := scalarString(flt.Value)
		wantNum, wantIsNum := parseNumber(want)
		return func(v string) bool {
			if IsMissing(v) {
				return false
			}
			if wantIsNum {
				if n, ok := parseNumber(v); ok {
					return n == wantNum
				}
			}
			return v == want
		}, nil
	case FilterContains:
		want := scalarString(flt.Value)
		return func(v string) bool {
			return !IsMissing(v) && strings.Contains(v, want)
		}, nil
	case FilterRange:
		if kind != KindNumeric {
			return nil, fmt.Errorf("invalid filter on %q: range needs a numeric column", flt.Column)
		}
		bounds, ok := flt.Value.([]any)
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("invalid filter on %q: range needs [min, max]", flt.Column)
		}
		lo, okLo := parseNumber(scalarString(bounds[0]))
		hi, okHi := parseNumber(scalarString(bounds[1]))
		if !okLo || !okHi {
			return nil, fmt.Errorf("invalid filter on %q: range bounds must be numbers", flt.Column)
		}
		return func(v string) bool {
			if IsMissing(v) {
				return false
			}
			n, ok := parseNumber(v)
			return ok && n >= lo && n <= hi
		}, nil
	case FilterIn:
		list, ok := flt.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid filter on %q: in needs a list of values", flt.Column)
		}
		allowed := make(map[string]struct{}, len(list))
		nums := make([]float64, 0, len(list))
		for _, item := range list {
			s := scalarString(item)
			allowed[s] = struct{}{}
			if n, ok := parseNumber(s); ok {
				nums = append(nums, n)
			}
		}
		return func(v string) bool {
			if IsMissing(v) {
				return false
			}
			if _, ok := allowed[v]; ok {
				return true
			}
			if kind == KindNumeric {
				if n, ok := parseNumber(v); ok {
					for _, want := range nums {
						if n == want {
							return true
						}
					}
				}
			}
			return false
		}, nil
	default:
		return nil, fmt.Errorf("invalid filter type %q", flt.Type)
	}
}

// scalarString renders a decoded JSON scalar the way it would appear in a file
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
