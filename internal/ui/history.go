package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanLyss/AstroNavigation/internal/export"
	"github.com/DanLyss/AstroNavigation/internal/state"
)

// HistoryModel lists recent solves, newest first.
type HistoryModel struct {
	width   int
	height  int
	cursor  int
	entries []state.Entry // newest first
	events  []state.Event
}

// NewHistoryModel creates a new history model.
func NewHistoryModel() HistoryModel {
	return HistoryModel{}
}

// SetSize updates the viewport size.
func (m HistoryModel) SetSize(width, height int) HistoryModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData refreshes the list from a snapshot.
func (m HistoryModel) UpdateData(snap state.Snapshot) HistoryModel {
	m.entries = make([]state.Entry, 0, len(snap.History))
	for i := len(snap.History) - 1; i >= 0; i-- {
		m.entries = append(m.entries, snap.History[i])
	}
	m.events = snap.Events
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
	return m
}

// Update handles messages.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.entries) && m.entries[m.cursor].OK() {
				e := m.entries[m.cursor]
				return m, func() tea.Msg { return selectEntryMsg{entry: e} }
			}
		}
	}
	return m, nil
}

// View renders the history list and the most recent events.
func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Solve History"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-5s %-20s %-18s %-13s %-13s %8s", "ID", "Solved", "Source", "Latitude", "Longitude", "Time")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString("  No solves yet\n")
		return b.String()
	}

	maxRows := m.height - 12
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := startIdx + maxRows
	if endIdx > len(m.entries) {
		endIdx = len(m.entries)
	}

	for i := startIdx; i < endIdx; i++ {
		row := historyRow(m.entries[i])
		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(row))
		case !m.entries[i].OK():
			b.WriteString(errorStyle.Render(row))
		default:
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Events"))
		b.WriteString("\n")
		n := len(m.events)
		for i := n - 1; i >= 0 && i >= n-5; i-- {
			b.WriteString("  " + labelStyle.Render(eventLine(m.events[i])) + "\n")
		}
	}

	return b.String()
}

func historyRow(e state.Entry) string {
	source := e.Source
	if source == "" {
		source = "-"
	}
	lat, lon := "failed", ""
	if e.OK() {
		lat = export.FormatLatitude(e.Solution.Latitude.Deg())
		lon = export.FormatLongitude(e.Solution.Longitude.Deg())
	}
	return fmt.Sprintf("%-5d %-20s %-18s %-13s %-13s %8s",
		e.ID,
		e.SolvedAt.UTC().Format("2006-01-02 15:04:05"),
		truncate(source, 18),
		lat,
		lon,
		e.Duration.Round(time.Millisecond),
	)
}

func eventLine(ev state.Event) string {
	ts := ev.Timestamp.UTC().Format("15:04:05")
	switch ev.Type {
	case state.EventFailed:
		return fmt.Sprintf("%s  #%d failed: %s", ts, ev.EntryID, ev.Detail)
	case state.EventMoved:
		return fmt.Sprintf("%s  #%d moved %.2f°", ts, ev.EntryID, ev.Shift)
	default:
		return fmt.Sprintf("%s  #%d fix", ts, ev.EntryID)
	}
}
