package engine

import "sync/atomic"

// Metrics tallies commands and events processed by an engine. Grounded on an
// atomic-counter-with-Snapshot shape, re-keyed from request/response counts
// to the command and event kinds this engine actually dispatches.
type Metrics struct {
	commands [5]atomic.Uint64 // indexed by CommandKind
	events   [3]atomic.Uint64 // indexed by EventKind

	invalidTransitions atomic.Uint64
	orderInvalid       atomic.Uint64
}

// NewMetrics creates a zeroed metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordCommand(kind CommandKind) {
	if int(kind) < len(m.commands) {
		m.commands[kind].Add(1)
	}
}

func (m *Metrics) recordEvent(kind EventKind) {
	if int(kind) < len(m.events) {
		m.events[kind].Add(1)
	}
}

func (m *Metrics) recordInvalidTransition() {
	m.invalidTransitions.Add(1)
}

func (m *Metrics) recordOrderInvalid() {
	m.orderInvalid.Add(1)
}

// CommandCount returns the number of commands of kind processed so far.
func (m *Metrics) CommandCount(kind CommandKind) uint64 {
	if int(kind) >= len(m.commands) {
		return 0
	}
	return m.commands[kind].Load()
}

// EventCount returns the number of events of kind processed so far.
func (m *Metrics) EventCount(kind EventKind) uint64 {
	if int(kind) >= len(m.events) {
		return 0
	}
	return m.events[kind].Load()
}

// TotalCommandCount sums CommandCount across every command kind.
func (m *Metrics) TotalCommandCount() uint64 {
	var total uint64
	for i := range m.commands {
		total += m.commands[i].Load()
	}
	return total
}

// TotalEventCount sums EventCount across every event kind.
func (m *Metrics) TotalEventCount() uint64 {
	var total uint64
	for i := range m.events {
		total += m.events[i].Load()
	}
	return total
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	for i := range m.commands {
		m.commands[i].Store(0)
	}
	for i := range m.events {
		m.events[i].Store(0)
	}
	m.invalidTransitions.Store(0)
	m.orderInvalid.Store(0)
}

// Snapshot captures every counter at a point in time.
type Snapshot struct {
	Commands           map[CommandKind]uint64
	Events             map[EventKind]uint64
	InvalidTransitions uint64
	OrderInvalid       uint64
}

// Snapshot returns a consistent-enough point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Commands: make(map[CommandKind]uint64, len(m.commands)),
		Events:   make(map[EventKind]uint64, len(m.events)),
	}
	for i := range m.commands {
		snap.Commands[CommandKind(i)] = m.commands[i].Load()
	}
	for i := range m.events {
		snap.Events[EventKind(i)] = m.events[i].Load()
	}
	snap.InvalidTransitions = m.invalidTransitions.Load()
	snap.OrderInvalid = m.orderInvalid.Load()
	return snap
}
