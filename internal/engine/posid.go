package engine

import (
	"fmt"
	"sync"
)

// PositionIDGenerator mints venue-agnostic position identifiers, one
// monotonic counter per symbol. It is restorable: Seed lets the engine
// resume counting after a restart without replaying history, by asking the
// ExecutionDatabase for how many positions already exist per symbol.
//
// Grounded on the per-symbol counter and seed-on-recover idea of a WAL-backed
// position store, with the WAL/snapshot machinery itself dropped — this
// generator is pure in-memory state, reseeded from ExecutionDatabase counts
// rather than from a replayed log.
type PositionIDGenerator struct {
	mu     sync.Mutex
	trader TraderID
	counts map[Symbol]uint64
}

// NewPositionIDGenerator creates a generator with every symbol's counter at
// zero, stamping every minted id with trader.
func NewPositionIDGenerator(trader TraderID) *PositionIDGenerator {
	return &PositionIDGenerator{trader: trader, counts: make(map[Symbol]uint64)}
}

// Seed initializes each symbol's counter from a prior count, e.g. fetched
// from ExecutionDatabase.GetSymbolPositionCounts() on startup.
func (g *PositionIDGenerator) Seed(counts map[Symbol]uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for symbol, n := range counts {
		g.counts[symbol] = n
	}
}

// Next mints the next position id for symbol, rendered as
// "{trader}-{symbol}-{counter}".
func (g *PositionIDGenerator) Next(symbol Symbol) PositionID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[symbol]++
	return PositionID(fmt.Sprintf("%s-%s-%06d", g.trader, symbol, g.counts[symbol]))
}

// Reset zeroes every symbol's counter.
func (g *PositionIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts = make(map[Symbol]uint64)
}

// Count returns the current counter value for symbol, for tests and
// diagnostics.
func (g *PositionIDGenerator) Count(symbol Symbol) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[symbol]
}
