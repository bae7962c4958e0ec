package services

import (
	"fmt"
	"math"
	"strconv"

	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
)

// Insights derives the key findings listed at the end of a report
func Insights(f *dataset.Frame) []export.Insight {
	quality := dataset.Quality(f)

	missing, outlierCols := 0, 0
	for _, n := range quality.MissingValues {
		missing += n
	}
	for _, n := range quality.Outliers {
		if n > 0 {
			outlierCols++
		}
	}

	insights := []export.Insight{{
		Title: "data_quality",
		Items: map[string]string{
			"duplicate_rows":        strconv.Itoa(quality.DuplicateRows),
			"missing_cells":         strconv.Itoa(missing),
			"columns_with_outliers": strconv.Itoa(outlierCols),
		},
	}}

	numeric := f.ColumnsOfKind(dataset.KindNumeric)
	if len(numeric) < 2 {
		return insights
	}
	matrix := dataset.Correlation(f, numeric)
	bestA, bestB, best := -1, -1, 0.0
	for a := range numeric {
		for b := a + 1; b < len(numeric); b++ {
			r := matrix[a][b]
			if math.IsNaN(r) {
				continue
			}
			if bestA < 0 || math.Abs(r) > math.Abs(best) {
				bestA, bestB, best = a, b, r
			}
		}
	}
	if bestA >= 0 {
		insights = append(insights, export.Insight{
			Title: "strongest_correlation",
			Text:  fmt.Sprintf("%s and %s (r = %.2f)", numeric[bestA], numeric[bestB], best),
		})
	}
	return insights
}
