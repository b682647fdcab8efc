// Package execdb provides ExecutionDatabase implementations: an in-memory
// store for tests and single-process deployments, and an optional
// PostgreSQL-backed store for durability across restarts. Neither is a
// production venue integration — they satisfy the contract the engine
// consumes, the same way a minimal gateway stub satisfies a consumed
// interface without talking to a real venue.
package execdb

import (
	"sync"

	"github.com/mostrub/nautilus-trader/internal/engine"
)

// Memory is an in-memory engine.ExecutionDatabase. It is the default store
// for tests and for engines that don't need to survive a restart with
// position history intact.
type Memory struct {
	mu        sync.RWMutex
	trader    engine.TraderID
	orders    map[engine.ClOrdID]engine.Order
	positions map[engine.PositionID]engine.Position
	accounts  map[engine.AccountID]engine.Account
}

// NewMemory creates an empty in-memory store stamped with trader.
func NewMemory(trader engine.TraderID) *Memory {
	return &Memory{
		trader:    trader,
		orders:    make(map[engine.ClOrdID]engine.Order),
		positions: make(map[engine.PositionID]engine.Position),
		accounts:  make(map[engine.AccountID]engine.Account),
	}
}

var _ engine.ExecutionDatabase = (*Memory)(nil)

// TraderID returns the trader id this store was stamped with at
// construction.
func (m *Memory) TraderID() engine.TraderID {
	return m.trader
}

// OrderExists reports whether clOrdID has already been saved.
func (m *Memory) OrderExists(clOrdID engine.ClOrdID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.orders[clOrdID]
	return ok
}

// GetOrder returns the order saved under clOrdID, if any.
func (m *Memory) GetOrder(clOrdID engine.ClOrdID) (*engine.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[clOrdID]
	if !ok {
		return nil, false
	}
	return &o, true
}

// SaveOrder stores a new order, overwriting any prior entry under the same
// ClOrdID.
func (m *Memory) SaveOrder(o engine.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ClOrdID] = o
	return nil
}

// UpdateOrder stores the order's latest state.
func (m *Memory) UpdateOrder(o engine.Order) error {
	return m.SaveOrder(o)
}

// GetPosition returns the position saved under positionID, if any.
func (m *Memory) GetPosition(positionID engine.PositionID) (*engine.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[positionID]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetPositionsOpen returns every open position, optionally filtered to a
// symbol and/or a strategy. Iteration order over a map is unspecified;
// callers that need a single deterministic pick under true concurrent
// writers should route through the engine, which serializes fill
// correlation per order.
func (m *Memory) GetPositionsOpen(symbol *engine.Symbol, strategyID *engine.StrategyID) []engine.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var open []engine.Position
	for _, p := range m.positions {
		if p.State != engine.PositionOpen {
			continue
		}
		if symbol != nil && p.Symbol != *symbol {
			continue
		}
		if strategyID != nil && p.StrategyID != *strategyID {
			continue
		}
		open = append(open, p)
	}
	return open
}

// PositionsOpenCount is the count GetPositionsOpen would return, without
// building the slice.
func (m *Memory) PositionsOpenCount(symbol *engine.Symbol, strategyID *engine.StrategyID) int {
	return len(m.GetPositionsOpen(symbol, strategyID))
}

// GetAccount returns the persisted account for id, if one was ever saved.
func (m *Memory) GetAccount(id engine.AccountID) (engine.Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[id]
	return acct, ok
}

// AddAccount persists an account for the first time.
func (m *Memory) AddAccount(acct engine.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acct.AccountID] = acct
	return nil
}

// UpdateAccount persists the account's latest balance/margin state.
func (m *Memory) UpdateAccount(acct engine.Account) error {
	return m.AddAccount(acct)
}

// SavePosition stores a new position.
func (m *Memory) SavePosition(p engine.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.PositionID] = p
	return nil
}

// UpdatePosition stores the position's latest state.
func (m *Memory) UpdatePosition(p engine.Position) error {
	return m.SavePosition(p)
}

// GetSymbolPositionCounts returns, per symbol, how many positions have
// ever been recorded, for the Position ID Generator to seed from.
func (m *Memory) GetSymbolPositionCounts() (map[engine.Symbol]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[engine.Symbol]uint64)
	for _, p := range m.positions {
		counts[p.Symbol]++
	}
	return counts, nil
}

// CheckResiduals returns every order not in a terminal state and every
// position still open.
func (m *Memory) CheckResiduals() (engine.Residuals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res engine.Residuals
	for _, o := range m.orders {
		if !o.State.IsTerminal() {
			res.OpenOrders = append(res.OpenOrders, o)
		}
	}
	for _, p := range m.positions {
		if p.State == engine.PositionOpen {
			res.OpenPositions = append(res.OpenPositions, p)
		}
	}
	return res, nil
}
