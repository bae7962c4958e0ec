package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Insight is a titled group of findings. The title is a snake_case key.
type Insight struct {
	Title string            `json:"title"`
	Items map[string]string `json:"items,omitempty"`
	Text  string            `json:"text,omitempty"`
}

// ReportInput holds what goes into an analysis report
type ReportInput struct {
	Frame       *dataset.Frame
	Charts      []charts.Config
	Insights    []Insight
	GeneratedAt time.Time
}

// Report renders a markdown analysis report
func Report(in ReportInput) string {
	f := in.Frame
	p := message.NewPrinter(language.English)
	titler := cases.Title(language.English)

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# Data Analysis Report")
	add("Generated on: %s", in.GeneratedAt.Format(time.DateTime))
	add("")

	add("## Data Overview")
	lines = append(lines, p.Sprintf("- **Total Rows:** %d", f.Len()))
	add("- **Total Columns:** %d", len(f.Columns))
	add("- **Data Types:** %s", typeCounts(f))
	add("")

	quality := dataset.Quality(f)
	if missingTotal(quality) > 0 {
		add("## Missing Values")
		for _, col := range f.Columns {
			n := quality.MissingValues[col]
			if n == 0 {
				continue
			}
			add("- **%s:** %d (%.1f%%)", col, n, float64(n)/float64(f.Len())*100)
		}
		add("")
	}

	if summaries := dataset.Summary(f); len(summaries) > 0 {
		add("## Numeric Columns Summary")
		for _, s := range summaries {
			add("### %s", s.Column)
			add("- Mean: %s", fixed2(s.Mean))
			add("- Median: %s", fixed2(s.P50))
			add("- Std Dev: %s", fixed2(s.Std))
			add("")
		}
	}

	if categorical := f.ColumnsOfKind(dataset.KindCategorical); len(categorical) > 0 {
		add("## Categorical Columns Summary")
		for _, col := range categorical {
			values, _ := f.Values(col)
			mostCommon := "N/A"
			if counts := dataset.ValueCounts(values); len(counts) > 0 {
				mostCommon = modeOf(counts)
			}
			add("### %s", col)
			add("- Unique Values: %d", quality.UniqueValues[col])
			add("- Most Common: %s", mostCommon)
			add("")
		}
	}

	if len(in.Charts) > 0 {
		add("## Visualizations Created")
		for i, c := range in.Charts {
			chartType := c.Type
			if chartType == "" {
				chartType = "Unknown Chart"
			}
			add("%d. %s", i+1, chartType)
			if c.Title != "" {
				add("   - Title: %s", c.Title)
			}
		}
		add("")
	}

	if len(in.Insights) > 0 {
		add("## Key Insights")
		for _, insight := range in.Insights {
			add("### %s", titler.String(strings.ReplaceAll(insight.Title, "_", " ")))
			if len(insight.Items) > 0 {
				keys := make([]string, 0, len(insight.Items))
				for k := range insight.Items {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					add("- %s: %s", k, insight.Items[k])
				}
			} else {
				add("- %s", insight.Text)
			}
			add("")
		}
	}

	return strings.Join(lines, "\n")
}

// typeCounts renders dtype counts most frequent first, e.g. {'int64': 2, 'object': 1}
func typeCounts(f *dataset.Frame) string {
	counts := f.TypeCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		if counts[names[a]] != counts[names[b]] {
			return counts[names[a]] > counts[names[b]]
		}
		return names[a] < names[b]
	})
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("'%s': %d", name, counts[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func missingTotal(q dataset.QualityReport) int {
	total := 0
	for _, n := range q.MissingValues {
		total += n
	}
	return total
}

// modeOf picks the lexically smallest of the most frequent values
func modeOf(counts []dataset.ValueCount) string {
	best := counts[0]
	for _, vc := range counts[1:] {
		if vc.Count < best.Count {
			break
		}
		if vc.Value < best.Value {
			best = vc
		}
	}
	return best.Value
}

func fixed2(v *float64) string {
	if v == nil {
		return "nan"
	}
	return fmt.Sprintf("%.2f", *v)
}
