// Package charts builds Plotly figure JSON from a dataset frame.
package charts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
)

// Chart types
const (
	ScatterPlot = "Scatter Plot"
	LineChart   = "Line Chart"
	BarChart    = "Bar Chart"
	Histogram   = "Histogram"
	BoxPlot     = "Box Plot"
	Heatmap     = "Heatmap"
	PieChart    = "Pie Chart"
)

// Types lists every supported chart type
var Types = []string{ScatterPlot, LineChart, BarChart, Histogram, BoxPlot, Heatmap, PieChart}

const (
	defaultHeight = 500
	histogramBins = 30
	missingGroup  = "(missing)"
)

var (
	ErrNoData          = errors.New("no data available to create chart")
	ErrUnsupportedType = errors.New("unsupported chart type")
	ErrHeatmapColumns  = errors.New("need at least 2 numeric columns for heatmap")
)

// Config describes the chart to build
type Config struct {
	Type   string `json:"type" validate:"required"`
	X      string `json:"x,omitempty"`
	Y      string `json:"y,omitempty"`
	Color  string `json:"color,omitempty"`
	Title  string `json:"title,omitempty"`
	Height int    `json:"height,omitempty" validate:"omitempty,min=100,max=2000"`
}

// Figure is a Plotly figure
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// Build creates the figure described by cfg
func Build(f *dataset.Frame, cfg Config) (*Figure, error) {
	if f == nil || f.Len() == 0 || len(f.Columns) == 0 {
		return nil, ErrNoData
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.Title == "" {
		cfg.Title = cfg.Type
	}
	if cfg.Color != "" {
		if _, ok := f.ColumnIndex(cfg.Color); !ok {
			return nil, fmt.Errorf("invalid color column: %q does not exist", cfg.Color)
		}
	}

	b := builder{f: f, cfg: cfg}
	var (
		fig *Figure
		err error
	)
	switch cfg.Type {
	case ScatterPlot:
		fig, err = b.scatter()
	case LineChart:
		fig, err = b.line()
	case BarChart:
		fig, err = b.bar()
	case Histogram:
		fig, err = b.histogram()
	case BoxPlot:
		fig, err = b.box()
	case Heatmap:
		fig, err = b.heatmap()
	case PieChart:
		fig, err = b.pie()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	b.applyLayout(fig)
	return fig, nil
}

// Recommend suggests chart types for the frame's column kinds
func Recommend(f *dataset.Frame) []string {
	numeric := len(f.ColumnsOfKind(dataset.KindNumeric))
	categorical := len(f.ColumnsOfKind(dataset.KindCategorical))

	recs := make([]string, 0, 7)
	if numeric >= 2 {
		recs = append(recs, ScatterPlot, LineChart, Heatmap)
	}
	if numeric >= 1 {
		recs = append(recs, Histogram, BoxPlot)
	}
	if categorical >= 1 {
		recs = append(recs, BarChart, PieChart)
	}
	return recs
}

type builder struct {
	f   *dataset.Frame
	cfg Config
}

// column resolves a required axis
func (b builder) column(axis, name string) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("%s axis is required for %s", axis, b.cfg.Type)
	}
	i, ok := b.f.ColumnIndex(name)
	if !ok {
		return -1, fmt.Errorf("invalid %s axis: column %q does not exist", axis, name)
	}
	return i, nil
}

func (b builder) numericColumn(axis, name string) (int, error) {
	i, err := b.column(axis, name)
	if err != nil {
		return -1, err
	}
	if b.f.Kind(i) != dataset.KindNumeric {
		return -1, fmt.Errorf("%s axis column %q must be numeric for %s", axis, name, b.cfg.Type)
	}
	return i, nil
}

// cell returns a JSON friendly value: float64 for numeric columns, nil when missing
func (b builder) cell(row, col int) any {
	v := b.f.Rows[row][col]
	if dataset.IsMissing(v) {
		return nil
	}
	if b.f.Kind(col) == dataset.KindNumeric {
		n, _ := b.f.Number(row, col)
		return n
	}
	return v
}

type group struct {
	name string
	rows []int
}

// groups splits rows by the color column, in order of first appearance.
// Without a color column all rows form one group named fallback.
func (b builder) groups(fallback string) []group {
	all := make([]int, b.f.Len())
	for i := range all {
		all[i] = i
	}
	if b.cfg.Color == "" {
		return []group{{name: fallback, rows: all}}
	}
	col, _ := b.f.ColumnIndex(b.cfg.Color)
	return groupRows(b.f, col, all)
}

func groupRows(f *dataset.Frame, col int, rows []int) []group {
	index := make(map[string]int)
	var out []group
	for _, r := range rows {
		key := f.Rows[r][col]
		if dataset.IsMissing(key) {
			key = missingGroup
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, group{name: key})
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

// sortedKeys orders aggregation keys numerically for numeric columns, else lexically
func sortedKeys(keys []string, numeric bool) {
	sort.SliceStable(keys, func(a, c int) bool {
		if numeric {
			x, _ := dataset.Numeric(keys[a])
			y, _ := dataset.Numeric(keys[c])
			return x < y
		}
		return keys[a] < keys[c]
	})
}

func (b builder) applyLayout(fig *Figure) {
	layout := map[string]any{
		"title":      map[string]any{"text": b.cfg.Title},
		"height":     b.cfg.Height,
		"template":   plotlyWhite(),
		"autosize":   true,
		"margin":     map[string]any{"l": 20, "r": 20, "t": 40, "b": 20},
		"font":       map[string]any{"size": 12},
		"showlegend": true,
		"legend": map[string]any{
			"orientation": "h",
			"yanchor":     "bottom",
			"y":           1.02,
			"xanchor":     "right",
			"x":           1,
		},
		"xaxis": axisLayout(b.cfg.X),
		"yaxis": axisLayout(b.cfg.Y),
	}
	for k, v := range fig.Layout {
		layout[k] = v
	}
	fig.Layout = layout
}

func axisLayout(title string) map[string]any {
	axis := map[string]any{"automargin": true}
	if title != "" {
		axis["title"] = map[string]any{"text": title}
	}
	return axis
}

// plotlyWhite is the subset of the plotly_white template the explorer relies on
func plotlyWhite() map[string]any {
	grid := map[string]any{
		"gridcolor":     "#EBF0F8",
		"linecolor":     "#EBF0F8",
		"zerolinecolor": "#EBF0F8",
		"ticks":         "",
	}
	return map[string]any{
		"layout": map[string]any{
			"paper_bgcolor": "white",
			"plot_bgcolor":  "white",
			"font":          map[string]any{"color": "#2a3f5f"},
			"xaxis":         grid,
			"yaxis":         grid,
			"colorway": []string{
				"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
				"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
			},
		},
	}
}
