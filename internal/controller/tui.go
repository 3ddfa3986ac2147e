package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	rewrittenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	unchangedStyle = lipgloss.NewStyle().Faint(true)
	summaryStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	diffAddStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	diffDelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive terminals.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	reports []m.TransformReport
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress view. It runs in the background until
// DisplaySummary or Close stops it.
func (p *TUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newProgressModel()
	p.program = tea.NewProgram(model, tea.WithOutput(p.output))
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		_, _ = p.program.Run()
	}()

	return nil
}

// Close stops the progress view if it is still running.
func (p *TUI) Close(_ context.Context) {
	p.stopProgress()
}

func (p *TUI) stopProgress() {
	if p.program == nil {
		return
	}

	p.program.Send(stopMsg{})
	<-p.done
	p.program = nil
}

// DisplayUnitResult records a unit's outcome and advances the progress view.
// Rendering happens in DisplaySummary, after the progress view has stopped.
func (p *TUI) DisplayUnitResult(_ context.Context, report m.TransformReport) {
	p.reports = append(p.reports, report)

	if p.program != nil {
		p.program.Send(unitDoneMsg{unit: report.Unit})
	}
}

// DisplaySummary stops the progress view and prints the collected results.
func (p *TUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	p.stopProgress()

	if err := ctx.Err(); err != nil {
		return
	}

	var b strings.Builder

	for _, report := range p.reports {
		writeReportLine(&b, report)
	}

	mode := "previewed"
	if summary.Written {
		mode = "written"
	}

	b.WriteString(summaryStyle.Render(fmt.Sprintf("Units: %d | Rewritten: %d (%s) | Unchanged: %d | Failed: %d",
		summary.Units, summary.Rewritten, mode, summary.Unchanged, summary.Failed)))
	b.WriteString("\n")

	_, _ = fmt.Fprint(p.output, b.String())
}

// DisplayCheckResult prints the outcome of the --check test run.
func (p *TUI) DisplayCheckResult(ctx context.Context, output string, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return
	}

	if err != nil {
		_, _ = fmt.Fprintf(p.output, "\n%s\n%s\n", failedStyle.Render("✗ check failed"), output)
		return
	}

	_, _ = fmt.Fprintf(p.output, "\n%s\n", rewrittenStyle.Render("✓ check passed"))
}

// DisplayInventory renders the list command's rows, paging when they do
// not fit on screen.
func (p *TUI) DisplayInventory(ctx context.Context, rows []m.InventoryRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(p.output, "No registrations or server functions found.")
		return nil
	}

	nameWidth := 0
	for _, row := range rows {
		if len(row.Unit) > nameWidth {
			nameWidth = len(row.Unit)
		}
	}

	lines := make([]string, 0, len(rows)+2)

	totalRegistrations := 0
	totalServerFns := 0

	for _, row := range rows {
		registrations := fmt.Sprintf("%d", row.Registrations)
		if row.Registrations == 0 {
			registrations = unchangedStyle.Render(registrations)
		}

		serverFns := fmt.Sprintf("%d", row.ServerFunctions)
		if row.ServerFunctions == 0 {
			serverFns = unchangedStyle.Render(serverFns)
		}

		lines = append(lines, fmt.Sprintf("  %-*s  %s registration(s), %s server function(s)",
			nameWidth, row.Unit, registrations, serverFns))

		totalRegistrations += row.Registrations
		totalServerFns += row.ServerFunctions
	}

	lines = append(lines, "", summaryStyle.Render(fmt.Sprintf(
		"  Total: %d registration(s), %d server function(s) across %d unit(s)",
		totalRegistrations, totalServerFns, len(rows))))

	return p.page(lines, "mockfn — registered mocks and server functions")
}

// DisplayReports renders a previously saved run, paging when it does not
// fit on screen.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.TransformReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		_, _ = fmt.Fprintln(p.output, "No reports found.")
		return nil
	}

	summary := m.RunSummary{Units: len(reports)}

	var b strings.Builder

	for _, report := range reports {
		writeReportLine(&b, report)

		switch report.Status {
		case m.StatusRewritten.String():
			summary.Rewritten++
		case m.StatusFailed.String():
			summary.Failed++
		default:
			summary.Unchanged++
		}
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	lines = append(lines, "", summaryStyle.Render(fmt.Sprintf(
		"  Units: %d | Rewritten: %d | Unchanged: %d | Failed: %d",
		summary.Units, summary.Rewritten, summary.Unchanged, summary.Failed)))

	return p.page(lines, "mockfn — transform report")
}

// page prints lines directly when they fit, otherwise runs a scrollable
// alt-screen pager.
func (p *TUI) page(lines []string, title string) error {
	model := newPagerModel(title, lines)
	model.height = terminalHeight(p.output)

	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// terminalHeight probes the terminal backing w. It returns 0 when w is not
// attached to a terminal, which makes page fall back to inline output.
func terminalHeight(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}

	_, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}

	return height
}

func writeReportLine(b *strings.Builder, report m.TransformReport) {
	switch report.Status {
	case m.StatusRewritten.String():
		fmt.Fprintf(b, "%s\n", rewrittenStyle.Render(fmt.Sprintf("✓ %s rewritten (%d declaration(s))",
			report.Unit, len(report.Rewritten))))

		if report.Diff != "" {
			writeDiff(b, report.Diff)
		}
	case m.StatusFailed.String():
		fmt.Fprintf(b, "%s\n", failedStyle.Render(fmt.Sprintf("✗ %s passed through: %s",
			report.Unit, report.Failure)))
	default:
		fmt.Fprintf(b, "%s\n", unchangedStyle.Render(fmt.Sprintf("· %s unchanged", report.Unit)))
	}
}

func writeDiff(b *strings.Builder, diff string) {
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString(diffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(diffDelStyle.Render(line))
		default:
			b.WriteString(line)
		}

		b.WriteString("\n")
	}
}

// stopMsg tells the progress model to quit.
type stopMsg struct{}

// unitDoneMsg reports that one unit finished transforming.
type unitDoneMsg struct {
	unit string
}

// progressModel shows a spinner while units are being transformed.
type progressModel struct {
	spinner  spinner.Model
	done     int
	latest   string
	quitting bool
}

func newProgressModel() progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return progressModel{spinner: sp}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		pm.quitting = true
		return pm, tea.Quit

	case unitDoneMsg:
		pm.done++
		pm.latest = msg.unit

		return pm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			pm.quitting = true
			return pm, tea.Quit
		}

		return pm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) View() string {
	if pm.quitting {
		return ""
	}

	if pm.latest == "" {
		return fmt.Sprintf("%s transforming...\n", pm.spinner.View())
	}

	return fmt.Sprintf("%s transforming... %d unit(s) done (last: %s)\n", pm.spinner.View(), pm.done, pm.latest)
}

// pagerModel is a scrollable line viewer shared by the list and view
// commands.
type pagerModel struct {
	title    string
	lines    []string
	height   int
	offset   int
	quitting bool
}

func newPagerModel(title string, lines []string) pagerModel {
	return pagerModel{title: title, lines: lines}
}

func (pg pagerModel) Init() tea.Cmd {
	return nil
}

func (pg pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pg.height = msg.Height
		return pg, nil

	case tea.KeyMsg:
		return pg.handleKeyPress(msg)
	}

	return pg, nil
}

func (pg pagerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Only navigation keys are handled here
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		pg.quitting = true
		return pg, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		pg.quitting = true
		return pg, tea.Quit

	case "down", "j":
		pg.offset = clamp(pg.offset+1, 0, pg.maxOffset())
		return pg, nil

	case "up", "k":
		pg.offset = clamp(pg.offset-1, 0, pg.maxOffset())
		return pg, nil

	case "g", "home":
		pg.offset = 0
		return pg, nil

	case "G", "end":
		pg.offset = pg.maxOffset()
		return pg, nil

	case "d", "pgdown":
		pg.offset = clamp(pg.offset+pg.linesPerPage(), 0, pg.maxOffset())
		return pg, nil

	case "u", "pgup":
		pg.offset = clamp(pg.offset-pg.linesPerPage(), 0, pg.maxOffset())
		return pg, nil
	}

	return pg, nil
}

// linesPerPage reserves room for the title and footer.
func (pg pagerModel) linesPerPage() int {
	if pg.height == 0 {
		return 10
	}

	reserved := 5

	available := pg.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

func (pg pagerModel) maxOffset() int {
	maxOff := len(pg.lines) - pg.linesPerPage()
	if maxOff < 0 {
		return 0
	}

	return maxOff
}

func (pg pagerModel) needsPagination() bool {
	return pg.height > 0 && len(pg.lines) > pg.linesPerPage()
}

func (pg pagerModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(pg.title))
	b.WriteString("\n\n")

	start := clamp(pg.offset, 0, pg.maxOffset())

	visible := pg.lines
	if pg.needsPagination() {
		end := start + pg.linesPerPage()
		if end > len(pg.lines) {
			end = len(pg.lines)
		}

		visible = pg.lines[start:end]
	}

	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if pg.needsPagination() {
		fmt.Fprintf(&b, "\n  Lines %d-%d of %d\n", start+1, start+len(visible), len(pg.lines))
		b.WriteString(helpStyle.Render("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
