package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"
)

func TestNew_RejectsMissingTraderOrAccountID(t *testing.T) {
	db, client, portfolio := newFakeDB(), newFakeClient(), newFakePortfolio()

	_, err := New(Config{AccountID: "acct-1", OMS: OMSNetting, Database: db, Client: client, Portfolio: portfolio})
	assert.Error(t, err)

	_, err = New(Config{TraderID: "trader-1", OMS: OMSNetting, Database: db, Client: client, Portfolio: portfolio})
	assert.Error(t, err)
}

func TestNew_RejectsUndefinedOMS(t *testing.T) {
	db, client, portfolio := newFakeDB(), newFakeClient(), newFakePortfolio()
	_, err := New(Config{TraderID: "trader-1", AccountID: "acct-1", Database: db, Client: client, Portfolio: portfolio})
	assert.ErrorIs(t, err, ErrOMSMismatch)
}

func TestNew_RejectsTraderIDMismatchWithDatabase(t *testing.T) {
	db, client, portfolio := newFakeDB(), newFakeClient(), newFakePortfolio()
	db.trader = "some-other-trader"

	_, err := New(Config{
		TraderID:  "trader-1",
		AccountID: "acct-1",
		OMS:       OMSNetting,
		Database:  db,
		Client:    client,
		Portfolio: portfolio,
	})
	assert.ErrorIs(t, err, ErrTraderMismatch)
}

func TestNew_SeedsPositionIDGeneratorFromDatabase(t *testing.T) {
	db := newFakeDB()
	require.NoError(t, db.SavePosition(Position{PositionID: "pos-1", Symbol: "AAPL.NASDAQ", State: PositionOpen}))

	e, err := New(Config{
		TraderID:  "trader-1",
		AccountID: "acct-1",
		OMS:       OMSNetting,
		Database:  db,
		Client:    newFakeClient(),
		Portfolio: newFakePortfolio(),
	})
	require.NoError(t, err)

	next := e.posGen.Next("AAPL.NASDAQ")
	assert.Equal(t, PositionID("trader-1-AAPL.NASDAQ-000002"), next)
}

func TestEngine_CommandAndEventCountsAreTestable(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))

	require.NoError(t, e.Execute(Command{Kind: CommandAccountInquiry, AccountID: "acct-1"}))
	require.NoError(t, e.Execute(Command{
		Kind: CommandSubmitOrder, ClOrdID: "clord-1", Symbol: "AAPL.NASDAQ",
		Side: SideBuy, Qty: decimal.NewFromInt(1), StrategyID: "strat-1",
	}))
	require.NoError(t, e.Process(Event{Kind: EventAccountState, Account: AccountState{AccountID: "acct-1"}}))

	assert.EqualValues(t, 1, e.Metrics().CommandCount(CommandAccountInquiry))
	assert.EqualValues(t, 1, e.Metrics().CommandCount(CommandSubmitOrder))
	assert.EqualValues(t, 1, e.Metrics().EventCount(EventAccountState))
}

func TestEngine_IsNetLongIsNetShortIsFlat(t *testing.T) {
	e, db, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))

	assert.True(t, e.IsFlat("AAPL.NASDAQ", "strat-1"))

	require.NoError(t, db.SavePosition(Position{
		PositionID: "pos-1", Symbol: "AAPL.NASDAQ", StrategyID: "strat-1",
		Side: PositionLong, NetQty: decimal.NewFromInt(10), State: PositionOpen,
	}))
	assert.True(t, e.IsNetLong("AAPL.NASDAQ", "strat-1"))
	assert.False(t, e.IsNetShort("AAPL.NASDAQ", "strat-1"))
	assert.False(t, e.IsFlat("AAPL.NASDAQ", "strat-1"))
}

func TestEngine_CheckResidualsReportsOpenOrdersAndPositions(t *testing.T) {
	e, db, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))
	submitAndAccept(t, e, "clord-1", "AAPL.NASDAQ", "strat-1", decimal.NewFromInt(10))

	require.NoError(t, db.SavePosition(Position{PositionID: "pos-1", Symbol: "AAPL.NASDAQ", State: PositionOpen}))

	res, err := e.CheckResiduals()
	require.NoError(t, err)
	assert.Len(t, res.OpenOrders, 1)
	assert.Len(t, res.OpenPositions, 1)
}

func TestEngine_RegisterStrategyBindsEngineHandle(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))

	require.NotNil(t, strat.handle)
	assert.True(t, strat.handle.IsFlat("AAPL.NASDAQ", "strat-1"))
}

func TestEngine_RegisteredStrategiesReflectsRegistrations(t *testing.T) {
	e, _, _, _ := newTestEngine()
	require.NoError(t, e.RegisterStrategy("strat-1", newFakeStrategy()))
	require.NoError(t, e.RegisterStrategy("strat-2", newFakeStrategy()))

	assert.ElementsMatch(t, []StrategyID{"strat-1", "strat-2"}, e.RegisteredStrategies())

	require.NoError(t, e.DeregisterStrategy("strat-1"))
	assert.Equal(t, []StrategyID{"strat-2"}, e.RegisteredStrategies())

	assert.ErrorIs(t, e.DeregisterStrategy("strat-1"), ErrStrategyNotFound)
}

func TestEngine_ResetZeroesCountersAndRegistryAndPositionIDGenerator(t *testing.T) {
	e, _, _, _ := newTestEngine()
	strat := newFakeStrategy()
	require.NoError(t, e.RegisterStrategy("strat-1", strat))

	require.NoError(t, e.Execute(Command{Kind: CommandAccountInquiry, AccountID: "acct-1"}))
	require.NoError(t, e.Process(Event{Kind: EventAccountState, Account: AccountState{AccountID: "acct-1"}}))
	assert.EqualValues(t, 1, e.CommandCount())
	assert.EqualValues(t, 1, e.EventCount())

	first := e.posGen.Next("AAPL.NASDAQ")

	e.Reset()

	assert.EqualValues(t, 0, e.CommandCount())
	assert.EqualValues(t, 0, e.EventCount())
	assert.Empty(t, e.RegisteredStrategies())

	second := e.posGen.Next("AAPL.NASDAQ")
	assert.Equal(t, first, second, "Reset zeroes the position id generator's per-symbol counts too")
}
