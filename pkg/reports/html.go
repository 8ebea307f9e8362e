package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/gate"
)

const missingCell = "–" // en dash for combinations no artifact covered

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 2rem; color: #111; background: #fafafa; }
      h1 { margin-top: 0; }
      table { border-collapse: collapse; width: 100%; margin-top: 1.5rem; }
      th, td { border: 1px solid #ccc; padding: 0.5rem; text-align: center; }
      thead th { background: #f0f0f0; }
      td.norepl { background: #ffe7d6; }
      td.repl { background: #e0f7ec; }
      .gate-summary { padding: 1rem; border-left: 4px solid #888; background: #fff; }
      .gate-summary .passed { color: #0a7d25; }
      .gate-summary .failed { color: #c2272d; }
      footer { margin-top: 2rem; font-size: 0.85rem; color: #555; }
      code { background: rgba(0,0,0,0.05); padding: 0.2rem 0.3rem; border-radius: 4px; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
{{- if .Gate}}
    <section class="gate-summary">
      <h2>Gate status: <span class="{{.Gate.Status}}">{{.Gate.StatusUpper}}</span></h2>
      <p>{{.Gate.Reason}}</p>
      <p>Threshold: {{.Gate.Threshold}} &mdash; Mode: {{.Gate.Mode}}</p>
      <p>Filters: {{.Gate.Filters}}</p>
    </section>
{{- else}}
    <p>No gate summary was generated.</p>
{{- end}}
    <section>
      <h2>Endpoint reliability</h2>
      <table>
        <thead>
          <tr><th rowspan="2">Endpoint</th>{{range .Table.Pfails}}<th colspan="2">pfail={{.}}</th>{{end}}</tr>
          <tr>{{range .Table.Pfails}}<th>norepl</th><th>repl</th>{{end}}</tr>
        </thead>
        <tbody>
{{- range .Rows}}
          <tr><td>{{.Endpoint}}</td>{{range .Cells}}<td class="norepl">{{.NoRepl}}</td><td class="repl">{{.Repl}}</td>{{end}}</tr>
{{- end}}
        </tbody>
      </table>
    </section>
    <footer>
      Generated from offline simulation artifacts by <code>resilord-report</code>.
    </footer>
  </body>
</html>
`))

// HTMLReport renders the endpoint reliability matrix plus an optional
// gate summary section as a static page.
type HTMLReport struct {
	Store       blob.Store
	SummaryPath string
	Title       string
}

// NewHTMLReport creates an HTML report over a results store.
func NewHTMLReport(store blob.Store, summaryPath, title string) *HTMLReport {
	if title == "" {
		title = "Resilience report"
	}
	return &HTMLReport{Store: store, SummaryPath: summaryPath, Title: title}
}

type gateView struct {
	Status      string
	StatusUpper string
	Reason      string
	Threshold   float64
	Mode        string
	Filters     string
}

type rowView struct {
	Endpoint string
	Cells    []cellView
}

type cellView struct {
	NoRepl string
	Repl   string
}

// Generate renders the report.
func (r *HTMLReport) Generate(ctx context.Context) (io.Reader, error) {
	table, err := BuildTable(ctx, r.Store)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title string
		Table *Table
		Rows  []rowView
		Gate  *gateView
	}{Title: r.Title, Table: table}

	for _, endpoint := range table.Endpoints {
		row := rowView{Endpoint: endpoint}
		for _, pfail := range table.Pfails {
			cell := table.Cells[endpoint][pfail]
			view := cellView{NoRepl: missingCell, Repl: missingCell}
			if cell.NoRepl != nil {
				view.NoRepl = FormatPercent(*cell.NoRepl)
			}
			if cell.Repl != nil {
				view.Repl = FormatPercent(*cell.Repl)
			}
			row.Cells = append(row.Cells, view)
		}
		data.Rows = append(data.Rows, row)
	}

	if view, err := loadGateView(r.SummaryPath); err != nil {
		return nil, err
	} else {
		data.Gate = view
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return &buf, nil
}

// loadGateView reads the gate summary document if one exists. A missing
// or unset summary is not an error; the report just says so.
func loadGateView(path string) (*gateView, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read gate summary %s: %w", path, err)
	}
	var summary gate.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode gate summary %s: %w", path, err)
	}

	status := "failed"
	if summary.Passed {
		status = "passed"
	}
	filters := "(all endpoints)"
	if len(summary.Filters) > 0 {
		filters = strings.Join(summary.Filters, ", ")
	}
	mode := string(summary.Mode)
	if mode == "" {
		mode = "any"
	}
	return &gateView{
		Status:      status,
		StatusUpper: strings.ToUpper(status),
		Reason:      summary.Reason,
		Threshold:   summary.Threshold,
		Mode:        mode,
		Filters:     filters,
	}, nil
}
