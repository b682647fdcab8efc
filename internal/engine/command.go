package engine

import "github.com/yanun0323/decimal"

// CommandKind classifies a Command for the Command Dispatcher.
type CommandKind uint8

const (
	CommandAccountInquiry CommandKind = iota
	CommandSubmitOrder
	CommandSubmitBracketOrder
	CommandModifyOrder
	CommandCancelOrder
)

// Command is a strategy-originated instruction submitted to the engine via
// Execute. Exactly one of the kind-specific fields is populated, matching
// Kind.
type Command struct {
	Kind CommandKind

	AccountID AccountID // CommandAccountInquiry

	// CommandSubmitOrder
	ClOrdID    ClOrdID
	Symbol     Symbol
	Side       Side
	Qty        decimal.Decimal
	Price      decimal.Decimal
	StrategyID StrategyID
	PositionID PositionID // non-empty to attach to an existing position (HEDGING)

	// CommandSubmitBracketOrder
	Bracket BracketOrder

	// CommandModifyOrder / CommandCancelOrder
	ModifyQty   decimal.Decimal
	ModifyPrice decimal.Decimal
}
