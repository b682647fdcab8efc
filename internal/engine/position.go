package engine

import (
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
)

// PositionSide is the direction of a position's net exposure.
type PositionSide uint8

const (
	PositionFlat PositionSide = iota
	PositionLong
	PositionShort
)

func (s PositionSide) String() string {
	switch s {
	case PositionLong:
		return "LONG"
	case PositionShort:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// PositionState is OPEN while net quantity is non-zero, CLOSED once a fill
// (or sequence of fills) brings it back to zero.
type PositionState uint8

const (
	PositionOpen PositionState = iota
	PositionClosed
)

func (s PositionState) String() string {
	if s == PositionClosed {
		return "CLOSED"
	}
	return "OPEN"
}

// PositionEventKind classifies a PositionEvent.
type PositionEventKind uint8

const (
	PositionOpened PositionEventKind = iota
	PositionModified
	PositionClosedEvt
)

// PositionEvent reports a change to a position, routed to the strategy that
// owns it and applied to the Portfolio.
type PositionEvent struct {
	Kind       PositionEventKind
	PositionID PositionID
	Symbol     Symbol
	StrategyID StrategyID
	Side       PositionSide
	NetQty     decimal.Decimal
	State      PositionState
}

// Position is the engine's cached view of a held position. It is owned by
// exactly one strategy for its entire lifetime; NETTING and HEDGING differ
// only in how the Fill Correlator decides which Position a fill applies to,
// never in how ApplyFill updates the position once resolved.
type Position struct {
	PositionID PositionID
	Symbol     Symbol
	StrategyID StrategyID
	Side       PositionSide
	NetQty     decimal.Decimal // signed: positive long, negative short
	State      PositionState
}

// ErrPositionClosed is returned when a fill is applied to an already-closed
// position.
var ErrPositionClosed = errors.New("position is closed")

// NewPosition opens a position from its first fill.
func NewPosition(id PositionID, symbol Symbol, strategyID StrategyID, fill Fill) Position {
	p := Position{
		PositionID: id,
		Symbol:     symbol,
		StrategyID: strategyID,
		NetQty:     decimal.NewFromInt(0),
		State:      PositionOpen,
	}
	p.ApplyFill(fill) //nolint:errcheck // fresh position, first fill cannot fail
	return p
}

// ApplyFill folds a fill's signed quantity into the position's net exposure,
// re-deriving Side, and transitions to CLOSED once NetQty returns to zero.
func (p *Position) ApplyFill(fill Fill) error {
	if p.State == PositionClosed {
		return errors.Wrap(ErrPositionClosed, string(p.PositionID))
	}

	signed := fill.Qty
	if fill.Side == SideSell {
		signed = signed.Neg()
	}
	p.NetQty = p.NetQty.Add(signed)

	switch {
	case p.NetQty.IsPositive():
		p.Side = PositionLong
	case p.NetQty.IsNegative():
		p.Side = PositionShort
	default:
		p.Side = PositionFlat
		p.State = PositionClosed
	}
	return nil
}

// IsNetLong reports whether the position currently holds positive exposure.
func (p Position) IsNetLong() bool {
	return p.State == PositionOpen && p.Side == PositionLong
}

// IsNetShort reports whether the position currently holds negative exposure.
func (p Position) IsNetShort() bool {
	return p.State == PositionOpen && p.Side == PositionShort
}

// IsFlat reports whether the position is closed (net zero exposure).
func (p Position) IsFlat() bool {
	return p.State == PositionClosed
}

// Event derives the PositionEvent that corresponds to this fill having just
// been applied: Opened if this was the position's creation, Closed if the
// fill brought it to flat, Modified otherwise.
func (p Position) Event(opened bool) PositionEvent {
	kind := PositionModified
	switch {
	case opened:
		kind = PositionOpened
	case p.State == PositionClosed:
		kind = PositionClosedEvt
	}
	return PositionEvent{
		Kind:       kind,
		PositionID: p.PositionID,
		Symbol:     p.Symbol,
		StrategyID: p.StrategyID,
		Side:       p.Side,
		NetQty:     p.NetQty,
		State:      p.State,
	}
}
