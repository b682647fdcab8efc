package engine

import "github.com/yanun0323/logs"

// Process runs a venue-originated Event through the Event Dispatcher:
// OrderEvents update the cached Order and, on a fill, hand off to the Fill
// Correlator; PositionEvents update the Portfolio and route to the owning
// strategy; AccountState updates the Account Updater.
func (e *Engine) Process(evt Event) error {
	e.metrics.recordEvent(evt.Kind)

	switch evt.Kind {
	case EventOrder:
		return e.processOrderEvent(evt.Order)
	case EventPosition:
		return e.processPositionEvent(evt.Pos)
	case EventAccountState:
		return e.processAccountState(evt.Account)
	default:
		logs.Errorf("engine: dropping event of unknown kind %d", evt.Kind)
		return nil
	}
}

func (e *Engine) processOrderEvent(evt OrderEvent) error {
	order, ok := e.db.GetOrder(evt.ClOrdID)
	if !ok {
		if evt.Kind == OrderEventCancelReject {
			logs.Errorf("engine: cancel reject for unknown cl_ord_id=%s", evt.ClOrdID)
		} else {
			logs.Warnf("engine: order event for unknown cl_ord_id=%s", evt.ClOrdID)
		}
		return nil
	}

	if evt.Kind == OrderEventCancelReject {
		e.routeOrderEvent(order.StrategyID, evt)
		return nil
	}

	if err := order.Apply(evt); err != nil {
		e.metrics.recordInvalidTransition()
		logs.Errorf("engine: %s", err)
	}
	if err := e.db.UpdateOrder(*order); err != nil {
		return err
	}

	if evt.Kind == OrderEventFilled {
		pos, opened, resolved, err := e.correlateFill(order, evt)
		if err != nil {
			return err
		}
		// The fill is delivered to the strategy before the derived position
		// event: a strategy must see OrderFilled before the portfolio-level
		// consequence of that fill.
		e.routeOrderEvent(order.StrategyID, evt)
		if resolved {
			// The derived position event re-enters through Process, so it is
			// counted and dispatched exactly like an inbound PositionEvent.
			return e.Process(Event{Kind: EventPosition, Pos: pos.Event(opened)})
		}
		return nil
	}

	e.routeOrderEvent(order.StrategyID, evt)
	return nil
}

func (e *Engine) processPositionEvent(evt PositionEvent) error {
	e.portfolio.Update(evt)
	e.routePositionEvent(evt.StrategyID, evt)
	return nil
}

func (e *Engine) processAccountState(state AccountState) error {
	return e.updateAccount(state)
}
