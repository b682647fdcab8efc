package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"
)

func submitAndAccept(t *testing.T, e *Engine, clOrdID ClOrdID, symbol Symbol, strategyID StrategyID, qty decimal.Decimal) {
	t.Helper()
	require.NoError(t, e.Execute(Command{
		Kind:       CommandSubmitOrder,
		ClOrdID:    clOrdID,
		Symbol:     symbol,
		Side:       SideBuy,
		Qty:        qty,
		StrategyID: strategyID,
	}))
	require.NoError(t, e.Process(Event{Kind: EventOrder, Order: OrderEvent{Kind: OrderEventSubmitted, ClOrdID: clOrdID}}))
	require.NoError(t, e.Process(Event{Kind: EventOrder, Order: OrderEvent{Kind: OrderEventAccepted, ClOrdID: clOrdID}}))
}

func TestProcess_CancelRejectForUnknownOrderIsDroppedNotRouted(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))

	err := e.Process(Event{Kind: EventOrder, Order: OrderEvent{Kind: OrderEventCancelReject, ClOrdID: "ghost-order"}})
	require.NoError(t, err)

	strat.mu.Lock()
	defer strat.mu.Unlock()
	assert.Empty(t, strat.cancelRejects, "nothing to route for an order the database never saw")
}

func TestProcess_CancelRejectRoutesToOwningStrategy(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))
	submitAndAccept(t, e, "clord-1", "AAPL.NASDAQ", "strat-1", decimal.NewFromInt(10))

	require.NoError(t, e.Process(Event{Kind: EventOrder, Order: OrderEvent{Kind: OrderEventCancelReject, ClOrdID: "clord-1", Reason: "order already filled"}}))

	strat.mu.Lock()
	defer strat.mu.Unlock()
	require.Len(t, strat.cancelRejects, 1)
	assert.Equal(t, "order already filled", strat.cancelRejects[0].Reason)
}

func TestProcess_OrderEventForUnknownClOrdIDIsDropped(t *testing.T) {
	e, _, _, _ := newTestEngine()
	err := e.Process(Event{Kind: EventOrder, Order: OrderEvent{Kind: OrderEventAccepted, ClOrdID: "ghost"}})
	assert.NoError(t, err)
}

func TestProcess_OrderFilled_DeliversFillToStrategyBeforePositionEvent(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))
	submitAndAccept(t, e, "clord-1", "AAPL.NASDAQ", "strat-1", decimal.NewFromInt(10))

	require.NoError(t, e.Process(Event{Kind: EventOrder, Order: OrderEvent{
		Kind:      OrderEventFilled,
		ClOrdID:   "clord-1",
		LeavesQty: decimal.NewFromInt(0),
		Fill:      Fill{Qty: decimal.NewFromInt(10), Side: SideBuy, Symbol: "AAPL.NASDAQ"},
	}}))

	strat.mu.Lock()
	defer strat.mu.Unlock()
	// submitAndAccept already delivered the Submitted and Accepted events.
	require.Equal(t, []string{"order", "order", "order", "position"}, strat.callOrder, "the fill must reach the strategy before the position event it caused")
}
