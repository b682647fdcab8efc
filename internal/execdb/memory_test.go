package execdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostrub/nautilus-trader/internal/engine"
)

func TestMemory_StampedWithTraderIDFromConstruction(t *testing.T) {
	m := NewMemory("trader-1")
	assert.Equal(t, engine.TraderID("trader-1"), m.TraderID())
}

func TestMemory_SaveAndFetchOrder(t *testing.T) {
	m := NewMemory("trader-1")
	assert.False(t, m.OrderExists("clord-1"))

	o := engine.NewOrder("clord-1", "AAPL.NASDAQ", engine.SideBuy, decimalTen(), "strat-1", "")
	require.NoError(t, m.SaveOrder(o))

	assert.True(t, m.OrderExists("clord-1"))
	got, ok := m.GetOrder("clord-1")
	require.True(t, ok)
	assert.Equal(t, o.ClOrdID, got.ClOrdID)
}

func TestMemory_GetSymbolPositionCounts(t *testing.T) {
	m := NewMemory("trader-1")
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-1", Symbol: "AAPL.NASDAQ", State: engine.PositionOpen}))
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-2", Symbol: "AAPL.NASDAQ", State: engine.PositionClosed}))
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-3", Symbol: "MSFT.NASDAQ", State: engine.PositionOpen}))

	counts, err := m.GetSymbolPositionCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["AAPL.NASDAQ"])
	assert.EqualValues(t, 1, counts["MSFT.NASDAQ"])
}

func TestMemory_GetPositionsOpenFiltersBySymbolAndStrategy(t *testing.T) {
	m := NewMemory("trader-1")
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-1", Symbol: "AAPL.NASDAQ", StrategyID: "strat-1", State: engine.PositionOpen}))
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-2", Symbol: "AAPL.NASDAQ", StrategyID: "strat-2", State: engine.PositionOpen}))
	require.NoError(t, m.SavePosition(engine.Position{PositionID: "pos-3", Symbol: "MSFT.NASDAQ", StrategyID: "strat-1", State: engine.PositionClosed}))

	symbol, strategyID := engine.Symbol("AAPL.NASDAQ"), engine.StrategyID("strat-1")
	open := m.GetPositionsOpen(&symbol, &strategyID)
	require.Len(t, open, 1)
	assert.Equal(t, engine.PositionID("pos-1"), open[0].PositionID)
	assert.Equal(t, 1, m.PositionsOpenCount(&symbol, &strategyID))

	assert.Len(t, m.GetPositionsOpen(&symbol, nil), 2)
	assert.Equal(t, 2, m.PositionsOpenCount(&symbol, nil))
}

func TestMemory_AddAccountThenUpdateAccountPersistsLatestState(t *testing.T) {
	m := NewMemory("trader-1")
	_, ok := m.GetAccount("acct-1")
	require.False(t, ok)

	acct := engine.NewAccount("acct-1")
	acct.Currency = "USD"
	acct.Balance = decimalTen()
	require.NoError(t, m.AddAccount(acct))

	got, ok := m.GetAccount("acct-1")
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(decimalTen()))

	acct.Balance = decimalTen().Add(decimalTen())
	require.NoError(t, m.UpdateAccount(acct))

	got, ok = m.GetAccount("acct-1")
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(decimalTen().Add(decimalTen())))
}

func TestMemory_CheckResidualsOnlyReportsOpen(t *testing.T) {
	m := NewMemory("trader-1")
	open := engine.NewOrder("clord-1", "AAPL.NASDAQ", engine.SideBuy, decimalTen(), "strat-1", "")
	require.NoError(t, m.SaveOrder(open))

	filled := engine.NewOrder("clord-2", "AAPL.NASDAQ", engine.SideBuy, decimalTen(), "strat-1", "")
	filled.State = engine.OrderStateFilled
	require.NoError(t, m.SaveOrder(filled))

	res, err := m.CheckResiduals()
	require.NoError(t, err)
	require.Len(t, res.OpenOrders, 1)
	assert.Equal(t, engine.ClOrdID("clord-1"), res.OpenOrders[0].ClOrdID)
}
