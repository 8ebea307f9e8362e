package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/simulation"
	"github.com/rmax-ai/resilord/pkg/store"
)

// Config
const (
	pollRate       = 2 * time.Second
	maxHistory     = 10
	viewportHeight = 16
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// Layout styles
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Red
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // Green
	modeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))  // Purple
)

type artifact struct {
	Key    string
	Result *simulation.Result
}

type tickMsg time.Time

type dataMsg struct {
	artifacts []artifact
	history   []store.RunRecord
	err       error
}

type model struct {
	spinner   spinner.Model
	viewport  viewport.Model
	artifacts []artifact
	history   []store.RunRecord
	selected  int
	err       error
	ready     bool

	resultsDir string
	historyDB  string
}

func initialModel(resultsDir, historyDB string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(100, viewportHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingRight(2)

	return model{
		spinner:    s,
		viewport:   vp,
		resultsDir: resultsDir,
		historyDB:  historyDB,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchData(m.resultsDir, m.historyDB),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.selected < len(m.artifacts)-1 {
				m.selected++
				m.updateViewportContent()
			}
			return m, nil
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.updateViewportContent()
			}
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchData(m.resultsDir, m.historyDB), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.artifacts = msg.artifacts
			m.history = msg.history
			if m.selected >= len(m.artifacts) {
				m.selected = 0
			}
			m.updateViewportContent()
		}
		if !m.ready {
			m.ready = true
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewportContent() {
	if len(m.artifacts) == 0 {
		m.viewport.SetContent(subtleStyle.Render("No result artifacts yet."))
		return
	}

	res := m.artifacts[m.selected].Result
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("pfail=%g  mode=%s  replicas=%s  ts=%s\n\n",
		res.Summary.Pfail,
		modeStyle.Render(res.Summary.Mode),
		res.Summary.ReplicasFile,
		res.Summary.Timestamp))

	// Sort endpoints for stable display
	endpoints := make([]string, 0, len(res.Endpoints))
	for ep := range res.Endpoints {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	for _, ep := range endpoints {
		entry := res.Endpoints[ep]
		score := fmt.Sprintf("%.4f", entry.Reliability)
		if entry.Reliability < res.Summary.MinReliability+1e-9 {
			score = lowStyle.Render(score)
		} else {
			score = highStyle.Render(score)
		}
		sb.WriteString(fmt.Sprintf("%-30s %s  via %s\n", ep, score, strings.Join(entry.Services, " > ")))
	}

	m.viewport.SetContent(sb.String())
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Scanning results...", m.spinner.View())
	}

	// Top Pane: artifact list
	var list strings.Builder
	list.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Result Artifacts") + "\n\n")
	if len(m.artifacts) == 0 {
		list.WriteString(subtleStyle.Render("No result artifacts found."))
	} else {
		for i, a := range m.artifacts {
			line := fmt.Sprintf("%s  (pfail=%g, mode=%s, min=%.4f)",
				a.Key, a.Result.Summary.Pfail, a.Result.Summary.Mode, a.Result.Summary.MinReliability)
			if i == m.selected {
				line = selectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			list.WriteString(line + "\n")
		}
	}
	topPane := paneStyle.Render(list.String())

	header := headerStyle.Render(fmt.Sprintf("%s Endpoint Reliability", m.spinner.View()))
	bottomPane := m.viewport.View()

	var historyPane string
	if m.historyDB != "" {
		var hb strings.Builder
		hb.WriteString(lipgloss.NewStyle().Bold(true).Underline(true).Render("Run History") + "\n\n")
		if len(m.history) == 0 {
			hb.WriteString(subtleStyle.Render("No archived runs."))
		} else {
			for _, rec := range m.history {
				verdict := ""
				if rec.Passed != nil {
					if *rec.Passed {
						verdict = okStyle.Render(" PASSED")
					} else {
						verdict = errorStyle.Render(" FAILED")
					}
				}
				hb.WriteString(fmt.Sprintf("%s  %-8s pfail=%g mode=%s%s\n",
					rec.Timestamp.Format("15:04:05"), rec.Kind, rec.Pfail, rec.Mode, verdict))
			}
		}
		historyPane = paneStyle.Render(hb.String())
	}

	// Status Footer
	var status string
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	} else {
		status = okStyle.Render(fmt.Sprintf("%d Artifacts", len(m.artifacts)))
	}
	footer := subtleStyle.Render(fmt.Sprintf("\n%s\nj/k to select, q to quit", statusStyle.Render(status)))

	parts := []string{topPane, header, bottomPane}
	if historyPane != "" {
		parts = append(parts, historyPane)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Commands

func fetchData(resultsDir, historyDB string) tea.Cmd {
	return func() tea.Msg {
		artifacts, err := loadArtifacts(resultsDir)
		if err != nil {
			return dataMsg{err: err}
		}

		var history []store.RunRecord
		if historyDB != "" {
			history, err = loadHistory(historyDB)
			if err != nil {
				return dataMsg{err: err}
			}
		}

		return dataMsg{artifacts: artifacts, history: history}
	}
}

func loadArtifacts(resultsDir string) ([]artifact, error) {
	ctx := context.Background()
	resultStore := blob.NewLocalStore(resultsDir)
	keys, err := resultStore.List(ctx, ".json")
	if err != nil {
		return nil, err
	}

	artifacts := make([]artifact, 0, len(keys))
	for _, key := range keys {
		res, err := simulation.ReadResult(ctx, resultStore, key)
		if err != nil {
			// Gate summaries and foreign JSON live alongside results.
			continue
		}
		artifacts = append(artifacts, artifact{Key: key, Result: res})
	}
	return artifacts, nil
}

func loadHistory(historyDB string) ([]store.RunRecord, error) {
	db, err := store.NewStore(historyDB)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.ListRuns("", maxHistory)
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	var (
		resultsDir string
		historyDB  string
	)
	flag.StringVar(&resultsDir, "results", "results", "Directory containing simulation result artifacts")
	flag.StringVar(&historyDB, "history", "", "Optional SQLite run history database")
	flag.Parse()

	p := tea.NewProgram(initialModel(resultsDir, historyDB), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
