package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanLyss/AstroNavigation/internal/export"
	"github.com/DanLyss/AstroNavigation/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	fixStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// DashboardModel shows the position fix and the stars behind it.
type DashboardModel struct {
	width   int
	height  int
	cursor  int
	entry   *state.Entry
	fix     *export.SolutionExport
	lastErr error
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// Init implements the Bubble Tea model interface.
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData shows the given entry. lastErr is the most recent failure.
func (m DashboardModel) UpdateData(e *state.Entry, lastErr error) DashboardModel {
	m.entry = e
	m.lastErr = lastErr
	m.fix = nil
	if e != nil && e.OK() {
		m.fix = export.FromSolution(e.Solution, e.SolvedAt)
	}
	if m.fix == nil || m.cursor >= len(m.fix.Stars) {
		m.cursor = 0
	}
	return m
}

// SetError sets the last error for display.
func (m DashboardModel) SetError(err error) DashboardModel {
	m.lastErr = err
	return m
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		starCount := 0
		if m.fix != nil {
			starCount = len(m.fix.Stars)
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < starCount-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if starCount > 0 {
				m.cursor = starCount - 1
			}
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.fix == nil {
		b.WriteString("No fix yet\n")
		return b.String()
	}

	b.WriteString(m.renderFix())
	b.WriteString("\n")
	b.WriteString(m.renderStarsTable())

	return b.String()
}

func (m DashboardModel) renderFix() string {
	f := m.fix
	var b strings.Builder

	b.WriteString(titleStyle.Render("Position Fix"))
	b.WriteString("\n")

	line := func(label, value string) {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-12s", label)) + value + "\n")
	}

	line("Latitude", fixStyle.Render(export.FormatLatitude(f.Latitude))+labelStyle.Render(fmt.Sprintf("  ±%.3f°", f.LatitudeStdDev)))
	line("Longitude", fixStyle.Render(export.FormatLongitude(f.Longitude))+labelStyle.Render(fmt.Sprintf("  ±%.3f°", f.LongitudeStdDev)))
	line("Observed", f.ObservedAt.UTC().Format(time.RFC3339))
	line("Anchor Az", fmt.Sprintf("%.2f°", f.AzStar0))
	line("Camera", fmt.Sprintf("tilt %.1f°  roll %.1f°", f.PositionalAngle, f.RotationAngle))
	line("Field", fmt.Sprintf("%.3f° x %.3f°", f.ScaleX, f.ScaleY))

	total := f.Resamples + f.FailedResamples
	ratio := 0.0
	if total > 0 {
		ratio = float64(f.Resamples) / float64(total)
	}
	line("Resamples", m.renderRatioBar(ratio, 20)+fmt.Sprintf(" %d/%d", f.Resamples, total))

	if m.entry != nil && m.entry.Source != "" {
		line("Source", m.entry.Source)
	}
	return b.String()
}

// renderRatioBar draws a filled bar for a fraction in [0, 1].
func (m DashboardModel) renderRatioBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))
	return "[" + style.Render(bar) + "]"
}

func (m DashboardModel) renderStarsTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Stars"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-4s %8s %8s %9s %9s %8s %8s", "#", "X", "Y", "RA", "Dec", "Alt", "Az")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	stars := m.fix.Stars
	maxRows := m.height - 14
	if maxRows < 5 {
		maxRows = 5
	}

	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := startIdx + maxRows
	if endIdx > len(stars) {
		endIdx = len(stars)
	}

	for i := startIdx; i < endIdx; i++ {
		s := stars[i]
		row := fmt.Sprintf("%-4d %8.1f %8.1f %9.4f %9.4f %8.3f %8.3f", i, s.X, s.Y, s.RA, s.Dec, s.Alt, s.Az)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(stars) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d stars", startIdx+1, endIdx, len(stars)))
	}

	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
