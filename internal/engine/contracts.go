package engine

import "github.com/yanun0323/decimal"

// ExecutionDatabase persists orders, positions and the counts the Position
// ID Generator seeds from. The engine ships an in-memory implementation and
// an optional durable one; neither is a production venue integration.
type ExecutionDatabase interface {
	// TraderID returns the trader id this database was stamped with when
	// created. New refuses to construct an Engine whose configured
	// TraderID disagrees with it: a database built for one trader must
	// never be handed to an engine hosting another.
	TraderID() TraderID

	OrderExists(ClOrdID) bool
	GetOrder(ClOrdID) (*Order, bool)
	SaveOrder(Order) error
	UpdateOrder(Order) error

	GetPosition(PositionID) (*Position, bool)
	// GetPositionsOpen returns every open position, optionally filtered to a
	// symbol and/or a strategy (nil means "any"). Unlike a single-position
	// lookup, this can represent the several concurrently open positions a
	// HEDGING account holds on one symbol/strategy pair, which IsNetLong,
	// IsNetShort and IsFlat need to sum over correctly.
	GetPositionsOpen(symbol *Symbol, strategyID *StrategyID) []Position
	// PositionsOpenCount is the count GetPositionsOpen would return, without
	// building the slice.
	PositionsOpenCount(symbol *Symbol, strategyID *StrategyID) int
	SavePosition(Position) error
	UpdatePosition(Position) error

	// GetAccount returns the persisted account for id, if one was ever
	// saved.
	GetAccount(AccountID) (Account, bool)
	// AddAccount persists an account for the first time.
	AddAccount(Account) error
	// UpdateAccount persists the account's latest balance/margin state.
	UpdateAccount(Account) error

	// GetSymbolPositionCounts returns, per symbol, how many positions have
	// ever been opened — what the Position ID Generator seeds from on
	// startup so restarts don't reuse an id.
	GetSymbolPositionCounts() (map[Symbol]uint64, error)

	// CheckResiduals returns every order and position still open, for the
	// engine's residual check at shutdown or on demand.
	CheckResiduals() (Residuals, error)
}

// Residuals is the set of orders and positions still open at the time
// CheckResiduals was called.
type Residuals struct {
	OpenOrders    []Order
	OpenPositions []Position
}

// ExecutionClient is the outbound venue connection the Command Dispatcher
// forwards accepted commands to. The engine ships a simulated
// implementation; it is not a production venue integration.
type ExecutionClient interface {
	SubmitOrder(Order) error
	SubmitBracketOrder(BracketOrder) error
	ModifyOrder(clOrdID ClOrdID, qty, price decimal.Decimal) error
	CancelOrder(ClOrdID) error
	AccountInquiry(AccountID) error
}

// Strategy is the consumer-implemented trading logic the Strategy Router
// delivers events to. EngineHandle is the borrowed, non-owning reference a
// strategy uses to submit commands back into the engine that hosts it.
type Strategy interface {
	OnOrderEvent(OrderEvent)
	OnPositionEvent(PositionEvent)
	OnCancelReject(OrderEvent)
}

// EngineHandle is the subset of Engine a Strategy is allowed to call back
// into. It does not own the Engine and must not outlive it.
type EngineHandle interface {
	Execute(Command) error
	IsNetLong(Symbol, StrategyID) bool
	IsNetShort(Symbol, StrategyID) bool
	IsFlat(Symbol, StrategyID) bool
}

// Portfolio tracks aggregate exposure across all positions. The engine
// ships a minimal reference implementation.
type Portfolio interface {
	Update(PositionEvent)
	SetBaseCurrency(Currency)
}
