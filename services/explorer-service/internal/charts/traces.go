package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"gonum.org/v1/gonum/floats"
)

func (b builder) scatter() (*Figure, error) {
	x, err := b.column("x", b.cfg.X)
	if err != nil {
		return nil, err
	}
	y, err := b.column("y", b.cfg.Y)
	if err != nil {
		return nil, err
	}

	fig := &Figure{}
	for _, g := range b.groups(b.cfg.Y) {
		xs, ys := b.series(g.rows, x, y)
		fig.Data = append(fig.Data, map[string]any{
			"type": "scatter",
			"mode": "markers",
			"name": g.name,
			"x":    xs,
			"y":    ys,
		})
	}

	if b.f.Kind(x) == dataset.KindNumeric && b.f.Kind(y) == dataset.KindNumeric {
		if trend := b.trendLine(); trend != nil {
			fig.Data = append(fig.Data, trend)
		}
	}
	return fig, nil
}

// trendLine fits y on x by least squares over rows where both are present
func (b builder) trendLine() map[string]any {
	xs, ys := dataset.Pairs(b.f, b.cfg.X, b.cfg.Y)
	if len(xs) < 2 || floats.Min(xs) == floats.Max(xs) {
		return nil
	}
	intercept, slope := dataset.LinearFit(xs, ys)

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	fitted := make([]float64, len(sorted))
	for i, v := range sorted {
		fitted[i] = intercept + slope*v
	}
	return map[string]any{
		"type": "scatter",
		"mode": "lines",
		"name": "Trend Line",
		"x":    sorted,
		"y":    fitted,
		"line": map[string]any{"dash": "dash", "color": "red"},
	}
}

func (b builder) line() (*Figure, error) {
	x, err := b.column("x", b.cfg.X)
	if err != nil {
		return nil, err
	}
	y, err := b.column("y", b.cfg.Y)
	if err != nil {
		return nil, err
	}

	fig := &Figure{}
	for _, g := range b.groups(b.cfg.Y) {
		xs, ys := b.series(g.rows, x, y)
		fig.Data = append(fig.Data, map[string]any{
			"type": "scatter",
			"mode": "lines",
			"name": g.name,
			"x":    xs,
			"y":    ys,
		})
	}
	return fig, nil
}

func (b builder) series(rows []int, x, y int) ([]any, []any) {
	xs := make([]any, len(rows))
	ys := make([]any, len(rows))
	for i, r := range rows {
		xs[i] = b.cell(r, x)
		ys[i] = b.cell(r, y)
	}
	return xs, ys
}

// aggregate sums y by x, or counts x when y is empty.
// Sums are ordered by key, counts by frequency.
func (b builder) aggregate() (labels []string, values []float64, valueName string, err error) {
	x, err := b.column("x", b.cfg.X)
	if err != nil {
		return nil, nil, "", err
	}

	if b.cfg.Y == "" {
		xVals, _ := b.f.Values(b.cfg.X)
		for _, vc := range dataset.ValueCounts(xVals) {
			labels = append(labels, vc.Value)
			values = append(values, float64(vc.Count))
		}
		return labels, values, "count", nil
	}

	y, err := b.numericColumn("y", b.cfg.Y)
	if err != nil {
		return nil, nil, "", err
	}
	sums := make(map[string]float64)
	for r, row := range b.f.Rows {
		key := row[x]
		if dataset.IsMissing(key) {
			continue
		}
		if _, ok := sums[key]; !ok {
			labels = append(labels, key)
		}
		n, _ := b.f.Number(r, y)
		sums[key] += n
	}
	sortedKeys(labels, b.f.Kind(x) == dataset.KindNumeric)
	values = make([]float64, len(labels))
	for i, l := range labels {
		values[i] = sums[l]
	}
	return labels, values, b.cfg.Y, nil
}

func (b builder) bar() (*Figure, error) {
	labels, values, name, err := b.aggregate()
	if err != nil {
		return nil, err
	}
	fig := &Figure{
		Data: []map[string]any{{
			"type": "bar",
			"name": name,
			"x":    labels,
			"y":    values,
		}},
	}
	if b.cfg.Y == "" {
		fig.Layout = map[string]any{"yaxis": axisLayout("count")}
	}
	return fig, nil
}

func (b builder) pie() (*Figure, error) {
	labels, values, _, err := b.aggregate()
	if err != nil {
		return nil, err
	}
	return &Figure{
		Data: []map[string]any{{
			"type":   "pie",
			"labels": labels,
			"values": values,
		}},
	}, nil
}

func (b builder) histogram() (*Figure, error) {
	x, err := b.numericColumn("x", b.cfg.X)
	if err != nil {
		return nil, err
	}

	fig := &Figure{}
	for _, g := range b.groups(b.cfg.X) {
		values := make([]float64, 0, len(g.rows))
		for _, r := range g.rows {
			if n, ok := b.f.Number(r, x); ok {
				values = append(values, n)
			}
		}
		fig.Data = append(fig.Data, map[string]any{
			"type":    "histogram",
			"name":    g.name,
			"x":       values,
			"nbinsx":  histogramBins,
			"opacity": 0.75,
		})
	}

	all, _ := b.f.Numbers(b.cfg.X)
	if len(all) == 0 {
		return nil, fmt.Errorf("x axis column %q has no values", b.cfg.X)
	}
	mean := floats.Sum(all) / float64(len(all))
	median := dataset.Median(all)
	fig.Layout = map[string]any{
		"barmode": "relative",
		"yaxis":   axisLayout("count"),
		"shapes": []map[string]any{
			verticalLine(mean, "red"),
			verticalLine(median, "blue"),
		},
		"annotations": []map[string]any{
			lineLabel(mean, fmt.Sprintf("Mean: %.2f", mean)),
			lineLabel(median, fmt.Sprintf("Median: %.2f", median)),
		},
	}
	return fig, nil
}

func verticalLine(x float64, color string) map[string]any {
	return map[string]any{
		"type": "line",
		"xref": "x",
		"yref": "paper",
		"x0":   x,
		"x1":   x,
		"y0":   0,
		"y1":   1,
		"line": map[string]any{"dash": "dash", "color": color},
	}
}

func lineLabel(x float64, text string) map[string]any {
	return map[string]any{
		"x":         x,
		"y":         1,
		"xref":      "x",
		"yref":      "paper",
		"text":      text,
		"showarrow": false,
		"xanchor":   "left",
		"yanchor":   "top",
	}
}

// box precomputes quartiles and Tukey fences so the figure does not depend on raw rows
func (b builder) box() (*Figure, error) {
	y, err := b.numericColumn("y", b.cfg.Y)
	if err != nil {
		return nil, err
	}
	x := -1
	if b.cfg.X != "" {
		if x, err = b.column("x", b.cfg.X); err != nil {
			return nil, err
		}
	}

	fig := &Figure{}
	for _, g := range b.groups(b.cfg.Y) {
		boxes := []group{{name: b.cfg.Y, rows: g.rows}}
		if x >= 0 {
			boxes = groupRows(b.f, x, g.rows)
		}
		trace := boxTrace(b.f, y, boxes)
		trace["name"] = g.name
		fig.Data = append(fig.Data, trace)
	}
	if b.cfg.Color != "" {
		fig.Layout = map[string]any{"boxmode": "group"}
	}
	return fig, nil
}

func boxTrace(f *dataset.Frame, col int, boxes []group) map[string]any {
	var names []string
	var q1, median, q3, lower, upper, mean []float64
	for _, bx := range boxes {
		values := make([]float64, 0, len(bx.rows))
		for _, r := range bx.rows {
			if n, ok := f.Number(r, col); ok {
				values = append(values, n)
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		lo, hi := dataset.IQRBounds(values)
		names = append(names, bx.name)
		q1 = append(q1, dataset.Quantile(values, 0.25))
		median = append(median, dataset.Quantile(values, 0.5))
		q3 = append(q3, dataset.Quantile(values, 0.75))
		lower = append(lower, fenceMin(values, lo))
		upper = append(upper, fenceMax(values, hi))
		mean = append(mean, floats.Sum(values)/float64(len(values)))
	}
	return map[string]any{
		"type":       "box",
		"x":          names,
		"q1":         q1,
		"median":     median,
		"q3":         q3,
		"lowerfence": lower,
		"upperfence": upper,
		"mean":       mean,
	}
}

// fenceMin returns the smallest sorted value not below the lower fence
func fenceMin(sorted []float64, fence float64) float64 {
	for _, v := range sorted {
		if v >= fence {
			return v
		}
	}
	return sorted[0]
}

func fenceMax(sorted []float64, fence float64) float64 {
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= fence {
			return sorted[i]
		}
	}
	return sorted[len(sorted)-1]
}

func (b builder) heatmap() (*Figure, error) {
	cols := b.f.ColumnsOfKind(dataset.KindNumeric)
	if len(cols) < 2 {
		return nil, ErrHeatmapColumns
	}
	matrix := dataset.Correlation(b.f, cols)

	z := make([][]any, len(matrix))
	for i, row := range matrix {
		z[i] = make([]any, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			z[i][j] = dataset.Round(v, 3)
		}
	}
	return &Figure{
		Data: []map[string]any{{
			"type":         "heatmap",
			"x":            cols,
			"y":            cols,
			"z":            z,
			"zmin":         -1,
			"zmax":         1,
			"colorscale":   rdBuR(),
			"texttemplate": "%{z:.2f}",
		}},
		Layout: map[string]any{
			"yaxis": map[string]any{"automargin": true, "autorange": "reversed"},
		},
	}, nil
}

// rdBuR is the reversed RdBu diverging scale, blue for -1 and red for 1
func rdBuR() [][]any {
	colors := []string{
		"rgb(5,48,97)", "rgb(33,102,172)", "rgb(67,147,195)", "rgb(146,197,222)",
		"rgb(209,229,240)", "rgb(247,247,247)", "rgb(253,219,199)", "rgb(244,165,130)",
		"rgb(214,96,77)", "rgb(178,24,43)", "rgb(103,0,31)",
	}
	scale := make([][]any, len(colors))
	for i, c := range colors {
		scale[i] = []any{float64(i) / float64(len(colors)-1), c}
	}
	return scale
}
