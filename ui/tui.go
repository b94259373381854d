// Package ui renders the transfer queue in the terminal: per-job
// statuses, a progress bar for the active copy, and a scrolling log.
// It is strictly a display layer; queue state arrives as snapshots and
// nothing here mutates a job.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/usbutler/usbutler/store"
)

// JobView is one row of the queue table.
type JobView struct {
	DisplayName string
	Status      store.Status
	BytesCopied int64
	Size        int64
	Err         string
}

// UIState is the snapshot the display renders.
type UIState struct {
	DriveRoot  string
	Jobs       []JobView
	Halted     bool
	HaltReason string
	Done       bool
}

// UpdateMsg delivers a fresh queue snapshot.
type UpdateMsg struct {
	State UIState
}

// LogMsg appends one line to the log viewport.
type LogMsg string

// Model implements tea.Model.
type Model struct {
	state    UIState
	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model
	logLines []string

	width  int
	height int

	// onQuit is invoked once when the user quits, typically to cancel
	// the runner's context.
	onQuit func()
	quit   bool

	titleStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	doneStyle    lipgloss.Style
	failStyle    lipgloss.Style
	skipStyle    lipgloss.Style
	activeStyle  lipgloss.Style
	helpStyle    lipgloss.Style
	successStyle lipgloss.Style
}

// NewModel creates the TUI model. onQuit may be nil.
func NewModel(initial UIState, onQuit func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	prog := progress.New(progress.WithDefaultGradient())

	return Model{
		state:        initial,
		spinner:      s,
		progress:     prog,
		onQuit:       onQuit,
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1),
		infoStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		skipStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		activeStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		helpStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.quit {
				m.quit = true
				if m.onQuit != nil {
					m.onQuit()
				}
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 14

		headerHeight := 4
		logHeight := 8
		tableHeight := msg.Height - headerHeight - logHeight - 2
		if tableHeight < 3 {
			tableHeight = 3
		}
		m.viewport = viewport.New(msg.Width, logHeight)
		_ = tableHeight

	case UpdateMsg:
		m.state = msg.State

	case LogMsg:
		m.logLines = append(m.logLines, string(msg))
		if len(m.logLines) > 200 {
			m.logLines = m.logLines[len(m.logLines)-200:]
		}
		m.viewport.SetContent(strings.Join(m.logLines, "\n"))
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sb strings.Builder

	header := fmt.Sprintf("%s usbutler %s", m.spinner.View(), m.titleStyle.Render("USB Transfer Queue"))
	sb.WriteString(header + "\n")

	done, failed, skipped, pending := countStatuses(m.state.Jobs)
	sb.WriteString(m.infoStyle.Render(fmt.Sprintf("Drive: %s | Done: %d  Failed: %d  Skipped: %d  Pending: %d",
		m.state.DriveRoot, done, failed, skipped, pending)) + "\n\n")

	for _, job := range m.state.Jobs {
		sb.WriteString(m.renderJob(job) + "\n")
	}
	if len(m.state.Jobs) == 0 {
		sb.WriteString(m.infoStyle.Render("Queue is empty.") + "\n")
	}

	sb.WriteString("\n" + m.viewport.View())

	help := m.helpStyle.Render("q/ctrl+c: quit")
	switch {
	case m.state.Halted:
		help = m.failStyle.Render("Halted: "+m.state.HaltReason) + " Press 'q' to exit."
	case m.state.Done:
		help = m.successStyle.Render("Queue drained.") + " Press 'q' to exit."
	}
	sb.WriteString("\n" + help)

	return sb.String()
}

func (m Model) renderJob(job JobView) string {
	name := truncateName(job.DisplayName, 44)

	switch job.Status {
	case store.StatusInProgress:
		percent := 0.0
		if job.Size > 0 {
			percent = float64(job.BytesCopied) / float64(job.Size)
		}
		return fmt.Sprintf("%s %-44s %s %s",
			m.spinner.View(), name, m.progress.ViewAs(percent),
			m.activeStyle.Render(formatBytes(job.BytesCopied)+" / "+formatBytes(job.Size)))
	case store.StatusDone:
		return fmt.Sprintf("  %-44s %s", name, m.doneStyle.Render("done"))
	case store.StatusFailed:
		return fmt.Sprintf("  %-44s %s", name, m.failStyle.Render("failed: "+job.Err))
	case store.StatusSkipped:
		return fmt.Sprintf("  %-44s %s", name, m.skipStyle.Render("skipped (already on drive)"))
	default:
		return fmt.Sprintf("  %-44s %s", name, m.infoStyle.Render("pending"))
	}
}

func countStatuses(jobs []JobView) (done, failed, skipped, pending int) {
	for _, job := range jobs {
		switch job.Status {
		case store.StatusDone:
			done++
		case store.StatusFailed:
			failed++
		case store.StatusSkipped:
			skipped++
		default:
			pending++
		}
	}
	return
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return "..." + name[len(name)-(max-3):]
}
