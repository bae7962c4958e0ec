// Package export renders frames, figures and sessions into downloadable formats.
package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"html/template"

	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// MIME types of the export formats
const (
	MimeCSV   = "text/csv"
	MimeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeHTML  = "text/html"
	MimeJSON  = "application/json"
	MimeMD    = "text/markdown"
)

const (
	excelSheet = "Data"
	plotlyCDN  = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

// CSV writes the header and rows. Missing cells are written empty.
func CSV(f *dataset.Frame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.Columns); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range f.Rows {
		out := make([]string, len(row))
		for i, v := range row {
			if !dataset.IsMissing(v) {
				out[i] = v
			}
		}
		if err := w.Write(out); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel writes the frame to the Data sheet of a new workbook
func Excel(f *dataset.Frame) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), excelSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = c
	}
	if err := wb.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for r, rec := range f.Records() {
		row := make([]any, len(f.Columns))
		for i, c := range f.Columns {
			row[i] = rec[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(excelSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var chartPage = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
<script src="{{.CDN}}"></script>
</head>
<body>
<div id="chart" style="height:100%; width:100%;"></div>
<script type="text/javascript">
Plotly.newPlot("chart", {{.Figure}}.data, {{.Figure}}.layout, {{.Config}});
</script>
</body>
</html>
`))

// plotConfig keeps the mode bar without the logo and the pan and lasso tools
var plotConfig = map[string]any{
	"displayModeBar":         true,
	"displaylogo":            false,
	"modeBarButtonsToRemove": []string{"pan2d", "lasso2d"},
	"responsive":             true,
}

// ChartHTML renders a standalone page that loads plotly from the CDN
func ChartHTML(fig *charts.Figure, title string) ([]byte, error) {
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode figure: %w", err)
	}
	cfgJSON, err := json.Marshal(plotConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plot config: %w", err)
	}

	var buf bytes.Buffer
	err = chartPage.Execute(&buf, map[string]any{
		"Title":  title,
		"CDN":    plotlyCDN,
		"Figure": template.JS(figJSON),
		"Config": template.JS(cfgJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render chart page: %w", err)
	}
	return buf.Bytes(), nil
}

// ChartJSON encodes the figure
func ChartJSON(fig *charts.Figure) ([]byte, error) {
	data, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode figure: %w", err)
	}
	return data, nil
}

// DownloadLink embeds data in an anchor with a data URI
func DownloadLink(data []byte, filename, mime string) string {
	name := html.EscapeString(filename)
	return fmt.Sprintf(`<a href="data:%s;base64,%s" download="%s">Download %s</a>`,
		mime, base64.StdEncoding.EncodeToString(data), name, name)
}
