// Package state provides thread-safe storage of recent solves.
package state

import (
	"sync"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/nav"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventFix    EventType = "FIX"
	EventFailed EventType = "FAILED"
	EventMoved  EventType = "MOVED"
)

// Event represents a notable change between consecutive solves.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	EntryID   int       `json:"entry_id"`
	Source    string    `json:"source,omitempty"`
	// Shift is the great-circle distance from the previous fix in degrees.
	Shift  float64 `json:"shift,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

// Entry is one recorded solve.
type Entry struct {
	ID       int
	SolvedAt time.Time
	Source   string
	Duration time.Duration
	Solution *nav.Solution
	Err      error
}

// OK reports whether the solve produced a fix.
func (e Entry) OK() bool {
	return e.Err == nil && e.Solution != nil
}

// Manager handles solve history with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	latest    *Entry
	lastFix   *Entry
	lastError error
	nextID    int
	solves    int
	failures  int

	// History buffer (ring)
	history    []Entry
	maxHistory int
	writeAt    int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	moveThreshold float64
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistory int
	MaxEvents  int
	// MoveThreshold is the shift in degrees between consecutive fixes that
	// raises a MOVED event.
	MoveThreshold float64
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistory:    100,
		MaxEvents:     50,
		MoveThreshold: 1,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 100
	}
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistory:    maxHistory,
		history:       make([]Entry, 0, maxHistory),
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		moveThreshold: cfg.MoveThreshold,
		nextID:        1,
	}
}

// Record stores the outcome of a solve and returns the stored entry.
func (m *Manager) Record(source string, sol *nav.Solution, d time.Duration, err error) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Entry{
		ID:       m.nextID,
		SolvedAt: time.Now(),
		Source:   source,
		Duration: d,
		Solution: sol,
		Err:      err,
	}
	m.nextID++
	m.solves++

	m.detectEvents(e)

	if e.OK() {
		m.lastFix = &e
	} else {
		m.failures++
		m.lastError = err
	}
	m.latest = &e

	if len(m.history) < m.maxHistory {
		m.history = append(m.history, e)
	} else {
		m.history[m.writeAt] = e
		m.writeAt = (m.writeAt + 1) % m.maxHistory
	}
	return e
}

// detectEvents compares a new entry with the previous fix.
func (m *Manager) detectEvents(e Entry) {
	if !e.OK() {
		detail := "no solution"
		if e.Err != nil {
			detail = e.Err.Error()
		}
		m.addEvent(Event{Type: EventFailed, Timestamp: e.SolvedAt, EntryID: e.ID, Source: e.Source, Detail: detail})
		return
	}

	ev := Event{Type: EventFix, Timestamp: e.SolvedAt, EntryID: e.ID, Source: e.Source}
	if m.lastFix != nil {
		ev.Shift = fixDistance(m.lastFix.Solution, e.Solution).Deg()
		if ev.Shift > m.moveThreshold {
			ev.Type = EventMoved
		}
	}
	m.addEvent(ev)
}

func fixDistance(a, b *nav.Solution) unit.Angle {
	return astro.AngularSeparation(a.Longitude, a.Latitude, b.Longitude, b.Latitude)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Latest    *Entry
	LastFix   *Entry
	LastError error
	Solves    int
	Failures  int
	History   []Entry
	Events    []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Latest:    copyEntry(m.latest),
		LastFix:   copyEntry(m.lastFix),
		LastError: m.lastError,
		Solves:    m.solves,
		Failures:  m.failures,
		History:   m.historyOrdered(),
		Events:    m.eventsOrdered(),
	}
}

func copyEntry(e *Entry) *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// historyOrdered returns entries oldest first.
func (m *Manager) historyOrdered() []Entry {
	if len(m.history) == 0 {
		return nil
	}
	result := make([]Entry, len(m.history))
	if len(m.history) < m.maxHistory {
		copy(result, m.history)
		return result
	}
	for i := 0; i < m.maxHistory; i++ {
		result[i] = m.history[(m.writeAt+i)%m.maxHistory]
	}
	return result
}

// eventsOrdered returns events in chronological order.
func (m *Manager) eventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}
	result := make([]Event, len(m.events))
	if len(m.events) < m.maxEvents {
		copy(result, m.events)
		return result
	}
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// History returns the last n entries, oldest first. n <= 0 returns all.
func (m *Manager) History(n int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.historyOrdered()
	if n <= 0 || len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.eventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Get returns the entry with the given ID if it is still in history.
func (m *Manager) Get(id int) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.history {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// LastError returns the error of the most recent failed solve.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// HasData returns true if at least one solve produced a fix.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastFix != nil
}
