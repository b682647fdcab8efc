package engine

import (
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
)

// OrderState is the lifecycle state of an order as tracked by the engine.
//
// Grounded on the map-keyed order store and ApplyX/isTerminal shape of a
// gateway-side order state machine, retargeted to the exact state set this
// engine owns (INITIALIZED..INVALID) rather than a venue gateway's ack states.
type OrderState uint8

const (
	OrderStateInitialized OrderState = iota
	OrderStateSubmitted
	OrderStateAccepted
	OrderStateWorking
	OrderStatePartiallyFilled
	OrderStateFilled
	OrderStateCancelled
	OrderStateExpired
	OrderStateRejected
	OrderStateDenied
	OrderStateInvalid
)

func (s OrderState) String() string {
	switch s {
	case OrderStateInitialized:
		return "INITIALIZED"
	case OrderStateSubmitted:
		return "SUBMITTED"
	case OrderStateAccepted:
		return "ACCEPTED"
	case OrderStateWorking:
		return "WORKING"
	case OrderStatePartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderStateFilled:
		return "FILLED"
	case OrderStateCancelled:
		return "CANCELLED"
	case OrderStateExpired:
		return "EXPIRED"
	case OrderStateRejected:
		return "REJECTED"
	case OrderStateDenied:
		return "DENIED"
	case OrderStateInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further event can legally transition an
// order out of this state.
func (s OrderState) IsTerminal() bool {
	switch s {
	case OrderStateFilled, OrderStateCancelled, OrderStateExpired, OrderStateRejected, OrderStateDenied, OrderStateInvalid:
		return true
	default:
		return false
	}
}

// Side is the direction of an order or fill.
type Side uint8

const (
	SideUndefined Side = iota
	SideBuy
	SideSell
)

// OrderEventKind classifies an OrderEvent for the FSM transition table.
type OrderEventKind uint8

const (
	OrderEventSubmitted OrderEventKind = iota
	OrderEventAccepted
	OrderEventWorking
	OrderEventFilled
	OrderEventCancelled
	OrderEventExpired
	OrderEventRejected
	OrderEventDenied
	OrderEventInvalid
	OrderEventCancelReject
)

// Fill carries the execution detail attached to an OrderFilled event.
type Fill struct {
	Qty        decimal.Decimal
	Price      decimal.Decimal
	Side       Side
	Symbol     Symbol
	PositionID PositionID // empty means the venue did not supply one
}

// OrderEvent is an event reported back for a specific order.
type OrderEvent struct {
	Kind      OrderEventKind
	ClOrdID   ClOrdID
	Symbol    Symbol
	Reason    string
	Fill      Fill
	LeavesQty decimal.Decimal
}

// Order is the engine's cached view of an order's lifecycle.
type Order struct {
	ClOrdID    ClOrdID
	Symbol     Symbol
	Side       Side
	Qty        decimal.Decimal
	LeavesQty  decimal.Decimal
	State      OrderState
	StrategyID StrategyID
	PositionID PositionID // null until a fill opens/attaches a position
}

// NewOrder constructs an order in its initial state.
func NewOrder(clOrdID ClOrdID, symbol Symbol, side Side, qty decimal.Decimal, strategyID StrategyID, positionID PositionID) Order {
	return Order{
		ClOrdID:    clOrdID,
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		LeavesQty:  qty,
		State:      OrderStateInitialized,
		StrategyID: strategyID,
		PositionID: positionID,
	}
}

// ErrInvalidTransition is returned (and logged, never panicked) when an
// event cannot be legally applied to an order's current state.
var ErrInvalidTransition = errors.New("invalid order state transition")

// transitions enumerates every state → {valid next states} edge.
var transitions = map[OrderState]map[OrderEventKind]OrderState{
	OrderStateInitialized: {
		OrderEventSubmitted: OrderStateSubmitted,
		OrderEventDenied:    OrderStateDenied,
		OrderEventInvalid:   OrderStateInvalid,
	},
	OrderStateSubmitted: {
		OrderEventAccepted: OrderStateAccepted,
		OrderEventRejected: OrderStateRejected,
		OrderEventDenied:   OrderStateDenied,
	},
	OrderStateAccepted: {
		OrderEventWorking:   OrderStateWorking,
		OrderEventFilled:    OrderStateFilled, // immediate full fill on acceptance
		OrderEventCancelled: OrderStateCancelled,
		OrderEventExpired:   OrderStateExpired,
		OrderEventRejected:  OrderStateRejected,
	},
	OrderStateWorking: {
		OrderEventFilled:    OrderStateFilled, // overridden to PartiallyFilled below when leaves > 0
		OrderEventCancelled: OrderStateCancelled,
		OrderEventExpired:   OrderStateExpired,
	},
	OrderStatePartiallyFilled: {
		OrderEventFilled:    OrderStateFilled,
		OrderEventCancelled: OrderStateCancelled,
		OrderEventExpired:   OrderStateExpired,
	},
}

// Apply advances the order's state machine. On an illegal transition it
// returns ErrInvalidTransition and leaves State untouched, but still copies
// across any non-transitional fields the event carries (§7: "order is
// updated (non-transitioned fields) and flow continues").
func (o *Order) Apply(evt OrderEvent) error {
	if evt.Kind == OrderEventCancelReject {
		return nil // never applied to the FSM; routed straight to the strategy
	}

	next, legal := o.nextState(evt)
	if !legal {
		o.applyNonTransitional(evt)
		return errors.Wrapf(ErrInvalidTransition, "cl_ord_id=%s state=%s event=%d", o.ClOrdID, o.State, evt.Kind)
	}

	o.applyNonTransitional(evt)
	o.State = next
	return nil
}

func (o *Order) nextState(evt OrderEvent) (OrderState, bool) {
	if o.State.IsTerminal() {
		return o.State, false
	}
	edges, ok := transitions[o.State]
	if !ok {
		return o.State, false
	}
	next, ok := edges[evt.Kind]
	if !ok {
		return o.State, false
	}
	if evt.Kind == OrderEventFilled && !evt.LeavesQty.IsZero() {
		next = OrderStatePartiallyFilled
	}
	return next, true
}

func (o *Order) applyNonTransitional(evt OrderEvent) {
	if evt.Reason != "" {
		// reason is surfaced via the event itself, not stored on the order
		_ = evt.Reason
	}
	if evt.Kind == OrderEventFilled {
		o.LeavesQty = evt.LeavesQty
		// PositionID is resolved and persisted by the Fill Correlator, which
		// runs after Apply and owns the ClOrdID -> PositionID index.
	}
}
