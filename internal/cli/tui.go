package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

// Monitor styles
var (
	monitorDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	monitorFoundStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	monitorBusyStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

// monitorRows is the number of scan counts shown at once.
const monitorRows = 12

// =============================================================================
// SearchModel - Live search monitor
// =============================================================================

// progressMsg carries one engine progress report.
type progressMsg search.Progress

// doneMsg ends the monitor with the pipeline outcome.
type doneMsg struct {
	res *pipeline.Result
	err error
}

type tickMsg time.Time

// scanRow is the monitor state of one scan count.
type scanRow struct {
	nScans     int
	factors    []int
	candidates int64
	fills      int
	state      search.Event
}

// SearchModel is the bubbletea model for the live search monitor.
type SearchModel struct {
	Family   search.Family
	Name     string
	MaxScans int

	Rows       []scanRow
	Candidates int64
	Start      time.Time
	Now        time.Time

	Result *pipeline.Result
	Err    error

	cancel context.CancelFunc
}

// NewSearchModel creates a monitor for a search. cancel is called when
// the user quits before the search ends.
func NewSearchModel(opts pipeline.Options, cancel context.CancelFunc) SearchModel {
	now := time.Now()
	m := SearchModel{
		Family:   opts.Family,
		MaxScans: opts.Search.MaxScans,
		Start:    now,
		Now:      now,
		cancel:   cancel,
	}
	if opts.Descriptor != nil {
		m.Name = opts.Descriptor.Name
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m SearchModel) Init() tea.Cmd {
	return tick()
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tickMsg:
		m.Now = time.Time(msg)
		return m, tick()
	case progressMsg:
		m.apply(search.Progress(msg))
	case doneMsg:
		m.Result, m.Err = msg.res, msg.err
		m.Now = time.Now()
		return m, tea.Quit
	}
	return m, nil
}

// apply folds a progress report into the rows.
func (m *SearchModel) apply(p search.Progress) {
	m.Candidates = p.Candidates
	if p.Event == search.EventScan || len(m.Rows) == 0 || m.Rows[len(m.Rows)-1].nScans != p.NScans {
		m.Rows = append(m.Rows, scanRow{nScans: p.NScans, state: search.EventScan})
	}
	row := &m.Rows[len(m.Rows)-1]
	row.factors = p.Factors
	switch p.Event {
	case search.EventFill:
		row.fills++
		row.candidates += int64(p.Filled)
	case search.EventDone, search.EventFound:
		row.state = p.Event
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Searching %s cycles", m.Family)
	if m.Name != "" {
		title += " · " + m.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(monitorDimStyle.Render(fmt.Sprintf("up to %d scans  ·  %d candidates  ·  %s  ·  q quit",
		m.MaxScans, m.Candidates, m.Now.Sub(m.Start).Round(time.Second))))
	b.WriteString("\n\n")

	start := 0
	if len(m.Rows) > monitorRows {
		start = len(m.Rows) - monitorRows
	}
	rows := [][]string{}
	for _, r := range m.Rows[start:] {
		factors := ""
		if len(r.factors) > 0 {
			factors = formatInts(r.factors)
		}
		rows = append(rows, []string{fmt.Sprint(r.nScans), factors, fmt.Sprint(r.fills), fmt.Sprint(r.candidates), stateLabel(r.state)})
	}

	t := newTable([]string{"Scans", "Factors", "Fills", "Candidates", "State"}, rows)
	b.WriteString(t.Render())
	b.WriteString("\n")

	return b.String()
}

func stateLabel(e search.Event) string {
	switch e {
	case search.EventFound:
		return monitorFoundStyle.Render("found")
	case search.EventDone:
		return monitorDimStyle.Render("none")
	}
	return monitorBusyStyle.Render("searching")
}

// =============================================================================
// Runner
// =============================================================================

// runSearchTUI runs the search behind the live monitor. Log output is
// discarded while the monitor owns the terminal.
func (c *CLI) runSearchTUI(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewSearchModel(opts, cancel), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	// Fill events drive the table, so ask for them regardless of -v.
	if opts.Search.Verbosity < 2 {
		opts.Search.Verbosity = 2
	}
	opts.Logger = log.New(io.Discard)
	opts.Search.Progress = func(p search.Progress) { program.Send(progressMsg(p)) }

	go func() {
		res, err := runner.Execute(ctx, opts)
		program.Send(doneMsg{res: res, err: err})
	}()

	final, err := program.Run()
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("search monitor: %w", err)
	}
	m, ok := final.(SearchModel)
	if !ok || (m.Result == nil && m.Err == nil) {
		return nil, context.Canceled
	}
	return m.Result, m.Err
}
