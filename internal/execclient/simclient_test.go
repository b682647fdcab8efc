package execclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"

	"github.com/mostrub/nautilus-trader/internal/engine"
)

func TestDecodeEvent_Filled(t *testing.T) {
	evt, ok := decodeEvent(simEvent{
		Kind:      "filled",
		ClOrdID:   "clord-1",
		Symbol:    "AAPL.NASDAQ",
		Qty:       "10",
		LeavesQty: "0",
		Side:      uint8(engine.SideBuy),
	})
	require.True(t, ok)
	assert.Equal(t, engine.EventOrder, evt.Kind)
	assert.Equal(t, engine.OrderEventFilled, evt.Order.Kind)
	assert.Equal(t, engine.ClOrdID("clord-1"), evt.Order.ClOrdID)
	assert.True(t, evt.Order.Fill.Qty.Equal(decimal.NewFromInt(10)))
}

func TestDecodeEvent_UnknownKindRejected(t *testing.T) {
	_, ok := decodeEvent(simEvent{Kind: "not_a_real_kind"})
	assert.False(t, ok)
}

func TestDecodeEvent_EmptyQuantitiesDefaultToZero(t *testing.T) {
	evt, ok := decodeEvent(simEvent{Kind: "accepted", ClOrdID: "clord-2"})
	require.True(t, ok)
	assert.True(t, evt.Order.LeavesQty.IsZero())
}
