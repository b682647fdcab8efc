package engine

import (
	"sync"

	"github.com/yanun0323/errors"
)

// ErrStrategyExists is returned when Register is called with a StrategyID
// already registered.
var ErrStrategyExists = errors.New("strategy already registered")

// ErrStrategyNotFound is returned when Deregister is called with a
// StrategyID that was never registered (or was already deregistered).
var ErrStrategyNotFound = errors.New("strategy not found")

// StrategyRegistry tracks the strategies hosted by an engine, keyed by
// StrategyID. Grounded on the venue/symbol registry's register-and-lookup
// shape, narrowed to a single index since StrategyID is the only key a
// strategy is ever resolved by.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[StrategyID]Strategy
	order      []StrategyID
}

// NewStrategyRegistry creates an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[StrategyID]Strategy)}
}

// Register adds a strategy under id. Registering a second strategy under an
// id already in use is rejected rather than overwriting the first.
func (r *StrategyRegistry) Register(id StrategyID, s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[id]; ok {
		return errors.Wrap(ErrStrategyExists, string(id))
	}
	r.strategies[id] = s
	r.order = append(r.order, id)
	return nil
}

// Deregister removes a strategy. Deregistering an id that was never
// registered returns ErrStrategyNotFound.
func (r *StrategyRegistry) Deregister(id StrategyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[id]; !ok {
		return errors.Wrap(ErrStrategyNotFound, string(id))
	}
	delete(r.strategies, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes every registered strategy, e.g. for Engine.Reset().
func (r *StrategyRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = make(map[StrategyID]Strategy)
	r.order = nil
}

// Get resolves a strategy handle by id. The returned bool is what the
// Strategy Router and pre-trade checks test — never the raw StrategyID —
// since an id can be well-formed but unregistered.
func (r *StrategyRegistry) Get(id StrategyID) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}

// List returns every registered StrategyID in registration order.
func (r *StrategyRegistry) List() []StrategyID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StrategyID, len(r.order))
	copy(out, r.order)
	return out
}
