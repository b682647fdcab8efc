package engine

import "github.com/yanun0323/logs"

// routeOrderEvent delivers an OrderEvent to the strategy that owns it. The
// router tests the resolved registry handle, not the raw StrategyID: an id
// can be well-formed and still unregistered (a strategy deregistered mid-
// flight, or a reject referencing a strategy this process never hosted),
// and that case is logged and dropped rather than panicking.
func (e *Engine) routeOrderEvent(strategyID StrategyID, evt OrderEvent) {
	strategy, ok := e.registry.Get(strategyID)
	if !ok {
		logs.Errorf("engine: dropping order event for unregistered strategy %s, cl_ord_id=%s", strategyID, evt.ClOrdID)
		return
	}
	if evt.Kind == OrderEventCancelReject {
		strategy.OnCancelReject(evt)
		return
	}
	strategy.OnOrderEvent(evt)
}

// routePositionEvent delivers a PositionEvent to the strategy that owns the
// position.
func (e *Engine) routePositionEvent(strategyID StrategyID, evt PositionEvent) {
	strategy, ok := e.registry.Get(strategyID)
	if !ok {
		logs.Errorf("engine: dropping position event for unregistered strategy %s, position_id=%s", strategyID, evt.PositionID)
		return
	}
	strategy.OnPositionEvent(evt)
}
