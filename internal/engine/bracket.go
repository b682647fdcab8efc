package engine

import "github.com/yanun0323/decimal"

// LegRole identifies which leg of a bracket order a ClOrdID belongs to.
type LegRole uint8

const (
	LegEntry LegRole = iota
	LegStopLoss
	LegTakeProfit
)

func (l LegRole) String() string {
	switch l {
	case LegStopLoss:
		return "STOP_LOSS"
	case LegTakeProfit:
		return "TAKE_PROFIT"
	default:
		return "ENTRY"
	}
}

// BracketLeg is one order within a bracket: an entry plus the stop-loss and
// take-profit that share its fate once either one triggers.
type BracketLeg struct {
	Role    LegRole
	ClOrdID ClOrdID
	Symbol  Symbol
	Side    Side
	Qty     decimal.Decimal
	Price   decimal.Decimal
}

// BracketOrder groups an entry leg with its protective legs. The three legs
// share a single collision fate: a duplicate ClOrdID on any leg invalidates
// the whole bracket, and the rejection reason names which leg collided.
type BracketOrder struct {
	StrategyID StrategyID
	Entry      BracketLeg
	StopLoss   BracketLeg
	TakeProfit BracketLeg
}

// Legs returns the three legs in submission order.
func (b BracketOrder) Legs() [3]BracketLeg {
	return [3]BracketLeg{b.Entry, b.StopLoss, b.TakeProfit}
}

// legReason names the OrderInvalid reason role's leg reports once collider
// is the leg whose ClOrdID actually collided with an existing order: the
// collider itself gets the plain duplicate-id reason, its entry/protective
// counterpart gets "parent cl_ord_id already exists", and its OCO sibling
// (the other protective leg) gets "OCO cl_ord_id already exists".
func legReason(role, collider LegRole) string {
	if role == collider {
		return ErrDuplicateClOrdID.Error()
	}
	if role == LegEntry || collider == LegEntry {
		return "parent " + ErrDuplicateClOrdID.Error()
	}
	return "OCO " + ErrDuplicateClOrdID.Error()
}
