package engine

import "github.com/yanun0323/logs"

// correlateFill resolves which Position an OrderFilled event applies to and
// folds the fill into it, minting a new position when none is resolved.
// The resolved PositionID is written back onto order and persisted via
// UpdateOrder before anything else happens, so a later fill against the
// same ClOrdID (e.g. a partial fill followed by the rest) sees a non-empty
// order.PositionID and reuses it rather than minting a second position.
//
// NETTING and HEDGING differ only in how a fill with no venue-supplied and
// no order-carried PositionID is resolved: HEDGING always mints a fresh
// position, while NETTING first looks for an open position of the same
// strategy on the same symbol and folds into that before minting a new one.
// Once a position is resolved, ApplyFill behaves identically under both
// regimes.
//
// resolved is false when the position the fill should update (the
// venue-supplied PositionID, or the one already attached to the order) is
// not in the database; the caller should skip emitting a PositionEvent in
// that case, not treat it as an error.
func (e *Engine) correlateFill(order *Order, evt OrderEvent) (pos Position, opened bool, resolved bool, err error) {
	var positionID PositionID
	openNew := false

	switch {
	case evt.Fill.PositionID != "":
		positionID = evt.Fill.PositionID
		openNew = order.PositionID == ""
	case order.PositionID != "":
		positionID = order.PositionID
	default:
		positionID, openNew = e.mintPositionID(order)
	}

	order.PositionID = positionID
	if err := e.db.UpdateOrder(*order); err != nil {
		return Position{}, false, false, err
	}

	if openNew {
		p := NewPosition(positionID, order.Symbol, order.StrategyID, evt.Fill)
		if err := e.db.SavePosition(p); err != nil {
			return Position{}, false, false, err
		}
		return p, true, true, nil
	}

	existing, ok := e.db.GetPosition(positionID)
	if !ok {
		logs.Errorf("engine: fill for unknown position_id=%s cl_ord_id=%s", positionID, order.ClOrdID)
		return Position{}, false, false, nil
	}

	p := *existing
	if err := p.ApplyFill(evt.Fill); err != nil {
		return Position{}, false, false, err
	}
	if err := e.db.UpdatePosition(p); err != nil {
		return Position{}, false, false, err
	}
	return p, false, true, nil
}

// mintPositionID resolves a PositionID for a fill that carried none and
// whose order had none attached yet, and reports whether the id is freshly
// minted. Under NETTING it first reuses an open position of the same
// strategy on the same symbol (the first one GetPositionsOpen returns)
// rather than minting a new one.
func (e *Engine) mintPositionID(order *Order) (PositionID, bool) {
	if e.oms == OMSNetting {
		symbol, strategyID := order.Symbol, order.StrategyID
		if open := e.db.GetPositionsOpen(&symbol, &strategyID); len(open) > 0 {
			return open[0].PositionID, false
		}
	}
	return e.posGen.Next(order.Symbol), true
}
