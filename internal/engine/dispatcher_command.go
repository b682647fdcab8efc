package engine

import "github.com/yanun0323/logs"

// Execute runs a Command through the engine's pre-trade checks and, once
// accepted, forwards it to the ExecutionClient. Rejections never return an
// error to the caller: they are reported as an OrderInvalid event routed
// back to the owning strategy, the same path a venue-originated rejection
// takes.
func (e *Engine) Execute(cmd Command) error {
	e.metrics.recordCommand(cmd.Kind)

	switch cmd.Kind {
	case CommandAccountInquiry:
		return e.executeAccountInquiry(cmd)
	case CommandSubmitOrder:
		return e.executeSubmitOrder(cmd)
	case CommandSubmitBracketOrder:
		return e.executeSubmitBracketOrder(cmd)
	case CommandModifyOrder:
		return e.executeModifyOrder(cmd)
	case CommandCancelOrder:
		return e.executeCancelOrder(cmd)
	default:
		logs.Errorf("engine: dropping command of unknown kind %d", cmd.Kind)
		return nil
	}
}

func (e *Engine) executeAccountInquiry(cmd Command) error {
	if cmd.AccountID != e.accountID {
		return ErrAccountMismatch
	}
	return e.client.AccountInquiry(cmd.AccountID)
}

func (e *Engine) executeSubmitOrder(cmd Command) error {
	if e.paused.Load() {
		e.rejectOrder(cmd.ClOrdID, cmd.Symbol, cmd.StrategyID, ErrOrderFlowPaused.Error())
		return nil
	}
	if !e.symbolKnown(cmd.Symbol) {
		e.rejectOrder(cmd.ClOrdID, cmd.Symbol, cmd.StrategyID, ErrUnknownSymbol.Error())
		return nil
	}
	if _, ok := e.registry.Get(cmd.StrategyID); !ok {
		e.rejectOrder(cmd.ClOrdID, cmd.Symbol, cmd.StrategyID, ErrUnknownStrategy.Error())
		return nil
	}
	if e.db.OrderExists(cmd.ClOrdID) {
		e.rejectOrder(cmd.ClOrdID, cmd.Symbol, cmd.StrategyID, ErrDuplicateClOrdID.Error())
		return nil
	}
	if cmd.PositionID != "" {
		if _, ok := e.db.GetPosition(cmd.PositionID); !ok {
			e.rejectOrder(cmd.ClOrdID, cmd.Symbol, cmd.StrategyID, ErrUnknownPositionID.Error())
			return nil
		}
	}

	order := NewOrder(cmd.ClOrdID, cmd.Symbol, cmd.Side, cmd.Qty, cmd.StrategyID, cmd.PositionID)
	if err := e.db.SaveOrder(order); err != nil {
		return err
	}
	return e.client.SubmitOrder(order)
}

func (e *Engine) executeSubmitBracketOrder(cmd Command) error {
	b := cmd.Bracket
	if e.paused.Load() {
		for _, leg := range b.Legs() {
			e.rejectOrder(leg.ClOrdID, leg.Symbol, b.StrategyID, ErrOrderFlowPaused.Error())
		}
		return nil
	}
	for _, leg := range b.Legs() {
		if !e.symbolKnown(leg.Symbol) {
			for _, inner := range b.Legs() {
				e.rejectOrder(inner.ClOrdID, inner.Symbol, b.StrategyID, ErrUnknownSymbol.Error())
			}
			return nil
		}
	}
	if _, ok := e.registry.Get(b.StrategyID); !ok {
		for _, leg := range b.Legs() {
			e.rejectOrder(leg.ClOrdID, leg.Symbol, b.StrategyID, ErrUnknownStrategy.Error())
		}
		return nil
	}

	for _, leg := range b.Legs() {
		if e.db.OrderExists(leg.ClOrdID) {
			for _, inner := range b.Legs() {
				e.rejectOrder(inner.ClOrdID, inner.Symbol, b.StrategyID, legReason(inner.Role, leg.Role))
			}
			return nil
		}
	}

	for _, leg := range b.Legs() {
		order := NewOrder(leg.ClOrdID, leg.Symbol, leg.Side, leg.Qty, b.StrategyID, "")
		if err := e.db.SaveOrder(order); err != nil {
			return err
		}
	}
	return e.client.SubmitBracketOrder(b)
}

// executeModifyOrder forwards unconditionally: the venue is authoritative
// for whether the order still exists and is still modifiable, so no local
// ExecutionDatabase check runs before the call.
func (e *Engine) executeModifyOrder(cmd Command) error {
	return e.client.ModifyOrder(cmd.ClOrdID, cmd.ModifyQty, cmd.ModifyPrice)
}

// executeCancelOrder forwards unconditionally, for the same reason.
func (e *Engine) executeCancelOrder(cmd Command) error {
	return e.client.CancelOrder(cmd.ClOrdID)
}

// symbolKnown reports whether symbol passes the engine's optional
// venue/symbol registry check. A nil registry (none configured) accepts
// every symbol.
func (e *Engine) symbolKnown(symbol Symbol) bool {
	if e.symbols == nil {
		return true
	}
	_, ok := e.symbols.SymbolIDByName(string(symbol))
	return ok
}

// rejectOrder synthesizes and routes an OrderInvalid event for a command
// that failed a pre-trade check before ever reaching the ExecutionClient.
func (e *Engine) rejectOrder(clOrdID ClOrdID, symbol Symbol, strategyID StrategyID, reason string) {
	e.metrics.recordOrderInvalid()
	evt := OrderEvent{
		Kind:    OrderEventInvalid,
		ClOrdID: clOrdID,
		Symbol:  symbol,
		Reason:  reason,
	}
	e.routeOrderEvent(strategyID, evt)
}
