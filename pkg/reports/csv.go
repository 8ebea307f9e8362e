package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"

	"github.com/rmax-ai/resilord/pkg/blob"
)

// CSVReport exports the endpoint reliability matrix as flat CSV, one row
// per endpoint with norepl/repl columns per pfail.
type CSVReport struct {
	Store blob.Store
}

// NewCSVReport creates a CSV export of a results store.
func NewCSVReport(store blob.Store) *CSVReport {
	return &CSVReport{Store: store}
}

// Generate renders the CSV document.
func (r *CSVReport) Generate(ctx context.Context) (io.Reader, error) {
	table, err := BuildTable(ctx, r.Store)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := []string{"endpoint"}
	for _, pfail := range table.Pfails {
		header = append(header, "pfail="+pfail+" norepl", "pfail="+pfail+" repl")
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, endpoint := range table.Endpoints {
		record := []string{endpoint}
		for _, pfail := range table.Pfails {
			cell := table.Cells[endpoint][pfail]
			norepl, repl := "", ""
			if cell.NoRepl != nil {
				norepl = FormatPercent(*cell.NoRepl)
			}
			if cell.Repl != nil {
				repl = FormatPercent(*cell.Repl)
			}
			record = append(record, norepl, repl)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf, nil
}
