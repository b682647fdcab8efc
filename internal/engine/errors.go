package engine

import "github.com/yanun0323/errors"

var (
	// ErrDuplicateClOrdID is the OrderInvalid reason when a SubmitOrder
	// command reuses a ClOrdID already known to the ExecutionDatabase.
	ErrDuplicateClOrdID = errors.New("cl_ord_id already exists")

	// ErrUnknownPositionID is the OrderInvalid reason when a SubmitOrder
	// command names a PositionID the ExecutionDatabase has no record of.
	ErrUnknownPositionID = errors.New("position_id does not exist")

	// ErrUnknownStrategy is the OrderInvalid reason when a SubmitOrder or
	// SubmitBracketOrder command names a StrategyID that is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy id")

	// ErrAccountMismatch is returned when an AccountInquiry command names an
	// AccountID other than the one this engine hosts. AccountState events
	// for another account are dropped without an error.
	ErrAccountMismatch = errors.New("account id mismatch")

	// ErrOrderFlowPaused is the rejection reason cited when an engine paused
	// via SetPaused(true) refuses a new order or bracket submission.
	ErrOrderFlowPaused = errors.New("order flow is paused")

	// ErrUnknownSymbol is the rejection reason cited when a SubmitOrder or
	// SubmitBracketOrder command names a symbol the engine's optional
	// venue/symbol registry does not recognize.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrOMSUndefined names an undefined OMS type. No function in this
	// package returns it; New reports an undefined OMS type with
	// ErrOMSMismatch.
	ErrOMSUndefined = errors.New("oms type is undefined")
)
