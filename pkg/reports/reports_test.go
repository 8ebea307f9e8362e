package reports

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/resilord/pkg/blob"
)

func seedResults(t *testing.T) (blob.Store, string) {
	t.Helper()
	dir := t.TempDir()
	docs := map[string]string{
		"result_norepl_0.1.json": `{"summary":{"pfail":0.1,"mode":"norepl"},"endpoints":{"/A":{"reliability":0.9},"/B":{"reliability":0.8}}}`,
		"result_repl_0.1.json":   `{"summary":{"pfail":0.1,"mode":"repl"},"endpoints":{"/A":{"reliability":0.99}}}`,
		"result_norepl_0.5.json": `{"summary":{"pfail":0.5,"mode":"norepl"},"endpoints":{"/A":{"reliability":0.5}}}`,
		"skipped.json":           `{"endpoints":{"/A":{"reliability":0.1}}}`,
	}
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return blob.NewLocalStore(dir), dir
}

func TestBuildTable(t *testing.T) {
	store, _ := seedResults(t)
	table, err := BuildTable(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []string{"0.1", "0.5"}, table.Pfails)
	assert.Equal(t, []string{"/A", "/B"}, table.Endpoints)

	cell := table.Cells["/A"]["0.1"]
	require.NotNil(t, cell.NoRepl)
	require.NotNil(t, cell.Repl)
	assert.Equal(t, 0.9, *cell.NoRepl)
	assert.Equal(t, 0.99, *cell.Repl)

	// /B has no repl run at any pfail.
	cellB := table.Cells["/B"]["0.1"]
	assert.NotNil(t, cellB.NoRepl)
	assert.Nil(t, cellB.Repl)
}

func TestHTMLReport(t *testing.T) {
	store, dir := seedResults(t)
	summaryPath := filepath.Join(dir, "gate_summary.json")
	require.NoError(t, os.WriteFile(summaryPath, []byte(
		`{"threshold":0.5,"mode":"any","filters":[],"passed":false,"reason":"Violations: /A @ pfail=0.5 -> 0.5000; min reliability=0.5000 (threshold=0.5)","endpoints":{}}`,
	), 0644))

	report := NewHTMLReport(store, summaryPath, "Demo report")
	reader, err := report.Generate(context.Background())
	require.NoError(t, err)
	html, err := io.ReadAll(reader)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "<title>Demo report</title>")
	assert.Contains(t, out, "Gate status")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "(all endpoints)")
	assert.Contains(t, out, "90.00%")
	assert.Contains(t, out, "99.00%")
	// /B has no repl artifact at pfail 0.5: the cell renders the dash.
	assert.Contains(t, out, missingCell)
}

func TestHTMLReport_NoSummary(t *testing.T) {
	store, _ := seedResults(t)
	report := NewHTMLReport(store, "", "")
	reader, err := report.Generate(context.Background())
	require.NoError(t, err)
	html, _ := io.ReadAll(reader)
	assert.Contains(t, string(html), "No gate summary was generated.")
}

func TestCSVReport(t *testing.T) {
	store, _ := seedResults(t)
	reader, err := NewCSVReport(store).Generate(context.Background())
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "endpoint,pfail=0.1 norepl,pfail=0.1 repl,pfail=0.5 norepl,pfail=0.5 repl")
	assert.Contains(t, out, "/A,90.00%,99.00%,50.00%,")
	assert.Contains(t, out, "/B,80.00%,,,")
}
