// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanLyss/AstroNavigation/internal/state"
	"github.com/DanLyss/AstroNavigation/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewDashboard ViewMode = iota
	ViewSky
	ViewHistory
)

// ResolveFunc runs a solve and records its outcome in the state manager.
type ResolveFunc func() error

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new solve has been recorded.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a solve error.
	ErrorMsg struct {
		Error error
	}

	// resolveDoneMsg reports the end of a background re-solve.
	resolveDoneMsg struct {
		err      error
		duration time.Duration
	}

	// selectEntryMsg asks the views to show a history entry.
	selectEntryMsg struct {
		entry state.Entry
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	resolve ResolveFunc

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	solving   bool

	// Sub-models
	dashboard DashboardModel
	skyView   SkyViewModel
	history   HistoryModel

	snapshot state.Snapshot
	// selected is the entry on display; nil follows the latest fix.
	selected *state.Entry
}

// New creates a new root UI model. resolve may be nil, which disables the
// re-solve key.
func New(stateMgr *state.Manager, resolve ResolveFunc) Model {
	m := Model{
		state:     stateMgr,
		resolve:   resolve,
		viewMode:  ViewDashboard,
		dashboard: NewDashboardModel(),
		skyView:   NewSkyViewModel(),
		history:   NewHistoryModel(),
	}
	m.snapshot = stateMgr.Snapshot()
	m = m.pushData()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), animTickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "d":
			m.viewMode = ViewDashboard
		case "2", "s":
			m.viewMode = ViewSky
		case "3", "h":
			m.viewMode = ViewHistory

		case "tab":
			m.viewMode = (m.viewMode + 1) % 3

		case "r":
			if cmd := m.startResolve(); cmd != nil {
				cmds = append(cmds, cmd)
			}

		case "L":
			// Back to following the latest fix.
			m.selected = nil
			m = m.pushData()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 4 lines, footer 2
		contentHeight := msg.Height - 6
		m.dashboard = m.dashboard.SetSize(msg.Width, contentHeight)
		m.skyView = m.skyView.SetSize(msg.Width, contentHeight)
		m.history = m.history.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.snapshot = m.state.Snapshot()
		m.history = m.history.UpdateData(m.snapshot)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case DataUpdateMsg:
		m.snapshot = msg.Snapshot
		m = m.pushData()

	case resolveDoneMsg:
		m.solving = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Re-solve failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("Re-solved in %v", msg.duration.Round(time.Millisecond))
		}
		m.snapshot = m.state.Snapshot()
		m.selected = nil
		m = m.pushData()

	case selectEntryMsg:
		e := msg.entry
		m.selected = &e
		m = m.pushData()
		m.viewMode = ViewDashboard

	case ErrorMsg:
		m.dashboard = m.dashboard.SetError(msg.Error)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// current returns the entry on display.
func (m Model) current() *state.Entry {
	if m.selected != nil {
		return m.selected
	}
	return m.snapshot.LastFix
}

// pushData hands the displayed entry to every view.
func (m Model) pushData() Model {
	e := m.current()
	m.dashboard = m.dashboard.UpdateData(e, m.snapshot.LastError)
	m.skyView = m.skyView.UpdateData(e)
	m.history = m.history.UpdateData(m.snapshot)
	return m
}

func (m *Model) startResolve() tea.Cmd {
	if m.resolve == nil {
		m.statusMsg = "No input to re-solve"
		return nil
	}
	if m.solving {
		return nil
	}
	m.solving = true
	m.statusMsg = ""
	resolve := m.resolve
	return func() tea.Msg {
		start := time.Now()
		err := resolve()
		return resolveDoneMsg{err: err, duration: time.Since(start)}
	}
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewSky:
		m.skyView, cmd = m.skyView.Update(msg)
	case ViewHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewDashboard:
		content = m.dashboard.View()
	case ViewSky:
		content = m.skyView.View()
	case ViewHistory:
		content = m.history.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9D4EDD"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(title.Render("✶ astronav"))
	b.WriteString(muted.Render(fmt.Sprintf("  position from the stars · v%s", version.Version)))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Fix", "[2] Sky", "[3] History"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.solving:
		status = accentStyle.Render(spinner) + dimStyle.Render(" solving...")
	case m.selected != nil:
		status = dimStyle.Render(fmt.Sprintf("entry #%d (L: latest)", m.selected.ID))
	case m.snapshot.Latest != nil && !m.snapshot.Latest.OK():
		status = errorStyle.Render("ERROR: " + m.snapshot.Latest.Err.Error())
	case m.snapshot.LastFix != nil:
		status = dimStyle.Render(fmt.Sprintf("%d solves, %d failed", m.snapshot.Solves, m.snapshot.Failures))
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(" waiting for a fix")
	}

	var help string
	switch m.viewMode {
	case ViewSky:
		help = dimStyle.Render("j/k: focus | l: labels | c: catalogue | r: re-solve")
	case ViewHistory:
		help = dimStyle.Render("↑↓: select | enter: show | r: re-solve")
	default:
		help = dimStyle.Render("↑↓: stars | tab: switch view | r: re-solve")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}
