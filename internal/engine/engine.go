// Package engine drives the order lifecycle and position lifecycle state
// machines from commands submitted by registered strategies and events
// reported back by an ExecutionClient, correlating fills into positions
// under either a NETTING or HEDGING order-management regime.
package engine

import (
	"sync/atomic"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"

	"github.com/mostrub/nautilus-trader/internal/schema"
)

// ErrOMSMismatch is returned by New when the requested OMS type is neither
// NETTING nor HEDGING.
var ErrOMSMismatch = errors.New("oms type is undefined or unsupported")

// ErrTraderMismatch is returned by New when the ExecutionDatabase was
// stamped with a different TraderID than the one Config names: a database
// built for one trader must never be handed to an engine hosting another.
var ErrTraderMismatch = errors.New("database trader id does not match configured trader id")

// Engine is the in-process execution engine for a single trader and a
// single account. It owns no goroutine of its own: Execute and Process run
// synchronously on the caller's goroutine. Live is the threaded variant
// that wraps an Engine with a dedicated worker and a Queue.
type Engine struct {
	traderID  TraderID
	accountID AccountID
	oms       OMSType

	db        ExecutionDatabase
	client    ExecutionClient
	registry  *StrategyRegistry
	posGen    *PositionIDGenerator
	portfolio Portfolio
	account   *Account // nil until the first matching AccountState event
	metrics   *Metrics
	paused    atomic.Bool
	symbols   *schema.Registry
}

var _ EngineHandle = (*Engine)(nil)

// Config bundles the dependencies New wires into an Engine.
type Config struct {
	TraderID  TraderID
	AccountID AccountID
	OMS       OMSType

	Database  ExecutionDatabase
	Client    ExecutionClient
	Portfolio Portfolio

	// Symbols is an optional venue/symbol registry. When set, SubmitOrder
	// and SubmitBracketOrder reject any symbol it does not recognize
	// before the order ever reaches the ExecutionDatabase or the
	// ExecutionClient. A nil registry disables this check.
	Symbols *schema.Registry
}

// New constructs an Engine, seeding the Position ID Generator from the
// database's recorded per-symbol counts so a restart never reuses an id.
func New(cfg Config) (*Engine, error) {
	if cfg.TraderID == "" {
		return nil, errors.New("trader id is empty")
	}
	if cfg.AccountID == "" {
		return nil, errors.New("account id is empty")
	}
	if cfg.OMS != OMSNetting && cfg.OMS != OMSHedging {
		return nil, ErrOMSMismatch
	}
	if cfg.Database == nil || cfg.Client == nil || cfg.Portfolio == nil {
		return nil, errors.New("database, client and portfolio are required")
	}
	if cfg.Database.TraderID() != cfg.TraderID {
		return nil, errors.Wrapf(ErrTraderMismatch, "config trader_id=%s database trader_id=%s", cfg.TraderID, cfg.Database.TraderID())
	}

	posGen := NewPositionIDGenerator(cfg.TraderID)
	counts, err := cfg.Database.GetSymbolPositionCounts()
	if err != nil {
		return nil, errors.Wrap(err, "seed position id generator")
	}
	posGen.Seed(counts)

	var account *Account
	if acct, ok := cfg.Database.GetAccount(cfg.AccountID); ok {
		account = &acct
	}

	return &Engine{
		traderID:  cfg.TraderID,
		accountID: cfg.AccountID,
		oms:       cfg.OMS,
		db:        cfg.Database,
		client:    cfg.Client,
		registry:  NewStrategyRegistry(),
		posGen:    posGen,
		portfolio: cfg.Portfolio,
		account:   account,
		metrics:   NewMetrics(),
		symbols:   cfg.Symbols,
	}, nil
}

// handleBinder is implemented by strategies that want a callback path into
// the engine hosting them, e.g. to submit orders from OnOrderEvent rather
// than being driven purely by an external caller.
type handleBinder interface {
	RegisterExecutionEngine(EngineHandle)
}

// RegisterStrategy adds a strategy to the engine's Strategy Registry. If s
// implements handleBinder, it is handed an EngineHandle bound to this
// engine before registration completes.
func (e *Engine) RegisterStrategy(id StrategyID, s Strategy) error {
	if b, ok := s.(handleBinder); ok {
		b.RegisterExecutionEngine(e)
	}
	return e.registry.Register(id, s)
}

// DeregisterStrategy removes a strategy from the Strategy Registry.
// Deregistering an id that is not currently registered returns
// ErrStrategyNotFound.
func (e *Engine) DeregisterStrategy(id StrategyID) error {
	return e.registry.Deregister(id)
}

// RegisteredStrategies lists every registered StrategyID.
func (e *Engine) RegisteredStrategies() []StrategyID {
	return e.registry.List()
}

// Metrics returns the engine's per-kind command/event counters.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// CommandCount is the total number of Execute calls processed so far,
// across every command kind.
func (e *Engine) CommandCount() uint64 {
	return e.metrics.TotalCommandCount()
}

// EventCount is the total number of Process calls processed so far, across
// every event kind.
func (e *Engine) EventCount() uint64 {
	return e.metrics.TotalEventCount()
}

// Reset zeroes the command/event counters, clears the Strategy Registry and
// zeroes the Position ID Generator. It does not touch the ExecutionDatabase.
func (e *Engine) Reset() {
	e.metrics.Reset()
	e.registry.Clear()
	e.posGen.Reset()
}

// Account returns the engine's cached account, or a zero-balance Account
// stamped with the engine's configured AccountID if no AccountState event
// has created one yet.
func (e *Engine) Account() Account {
	if e.account == nil {
		return NewAccount(e.accountID)
	}
	return *e.account
}

// CheckResiduals reports every order and position still open, for a
// graceful-shutdown or on-demand health check.
func (e *Engine) CheckResiduals() (Residuals, error) {
	return e.db.CheckResiduals()
}

// IsNetLong reports whether strategyID holds a net long position on symbol,
// summing signed quantity across every open position on that symbol and
// strategy — a HEDGING account may hold more than one. An empty strategyID
// sums over every strategy.
func (e *Engine) IsNetLong(symbol Symbol, strategyID StrategyID) bool {
	return e.netQty(symbol, strategyID).IsPositive()
}

// IsNetShort reports whether strategyID holds a net short position on
// symbol. An empty strategyID sums over every strategy.
func (e *Engine) IsNetShort(symbol Symbol, strategyID StrategyID) bool {
	return e.netQty(symbol, strategyID).IsNegative()
}

// IsFlat reports whether strategyID holds no open position on symbol. An
// empty symbol or strategyID matches any symbol or strategy.
func (e *Engine) IsFlat(symbol Symbol, strategyID StrategyID) bool {
	var symbolFilter *Symbol
	if symbol != "" {
		symbolFilter = &symbol
	}
	var strategyFilter *StrategyID
	if strategyID != "" {
		strategyFilter = &strategyID
	}
	return e.db.PositionsOpenCount(symbolFilter, strategyFilter) == 0
}

func (e *Engine) netQty(symbol Symbol, strategyID StrategyID) decimal.Decimal {
	var strategyFilter *StrategyID
	if strategyID != "" {
		strategyFilter = &strategyID
	}
	total := decimal.NewFromInt(0)
	for _, p := range e.db.GetPositionsOpen(&symbol, strategyFilter) {
		total = total.Add(p.NetQty)
	}
	return total
}

// SetPaused toggles whether new order submissions are accepted. It is the
// hot-reloadable operational kill switch: existing orders and positions are
// unaffected, and ModifyOrder/CancelOrder/AccountInquiry still pass through,
// since a paused engine should still let strategies flatten or cancel.
func (e *Engine) SetPaused(paused bool) {
	e.paused.Store(paused)
}

// Paused reports the current order-flow pause state.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}
