// Package portfolio provides a minimal engine.Portfolio reference
// implementation that tracks aggregate net exposure per symbol across
// whatever positions the engine reports.
package portfolio

import (
	"sync"

	"github.com/yanun0323/decimal"

	"github.com/mostrub/nautilus-trader/internal/engine"
)

// Portfolio records net exposure per symbol from the PositionEvents the
// engine's Event Dispatcher reports after every fill.
type Portfolio struct {
	mu             sync.RWMutex
	baseCurrency   engine.Currency
	netQtyBySymbol map[engine.Symbol]decimal.Decimal
}

// New creates an empty portfolio.
func New() *Portfolio {
	return &Portfolio{netQtyBySymbol: make(map[engine.Symbol]decimal.Decimal)}
}

var _ engine.Portfolio = (*Portfolio)(nil)

// Update records a PositionEvent's net quantity as the symbol's exposure,
// replacing the previous value. Entries are keyed by symbol, not by
// PositionID: when a HEDGING account holds several positions on the same
// symbol, the stored value is the net quantity of whichever position
// reported last, not the sum across those positions.
func (p *Portfolio) Update(evt engine.PositionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.netQtyBySymbol[evt.Symbol] = evt.NetQty
}

// SetBaseCurrency records the currency portfolio-level totals would be
// converted to, once multi-currency aggregation is needed.
func (p *Portfolio) SetBaseCurrency(c engine.Currency) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseCurrency = c
}

// NetExposure returns the last reported net quantity for symbol.
func (p *Portfolio) NetExposure(symbol engine.Symbol) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	qty, ok := p.netQtyBySymbol[symbol]
	if !ok {
		return decimal.NewFromInt(0)
	}
	return qty
}

// BaseCurrency returns the currency set by SetBaseCurrency, if any.
func (p *Portfolio) BaseCurrency() engine.Currency {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseCurrency
}
