package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"
)

func TestProcess_AccountState_UpdatesCachedAccount(t *testing.T) {
	e, _, _, _ := newTestEngine()

	require.NoError(t, e.Process(Event{Kind: EventAccountState, Account: AccountState{
		AccountID: "acct-1",
		Currency:  "USD",
		Balance:   decimal.NewFromInt(10000),
		Margin:    decimal.NewFromInt(500),
	}}))

	acct := e.Account()
	assert.Equal(t, Currency("USD"), acct.Currency)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(10000)))
}

func TestProcess_AccountState_WrongAccountDroppedNotErrored(t *testing.T) {
	e, _, _, _ := newTestEngine()

	err := e.Process(Event{Kind: EventAccountState, Account: AccountState{AccountID: "some-other-account"}})
	require.NoError(t, err, "an event for a different account is warned about and dropped, not an error")

	acct := e.Account()
	assert.Equal(t, AccountID("acct-1"), acct.AccountID)
	assert.True(t, acct.Balance.IsZero(), "a dropped report must never touch the cached account")
}

func TestProcess_AccountState_FirstEventLazilyCreatesAndPersistsAccount(t *testing.T) {
	e, db, _, portfolio := newTestEngine()

	_, ok := db.GetAccount("acct-1")
	require.False(t, ok, "no account is persisted before the first matching event")

	require.NoError(t, e.Process(Event{Kind: EventAccountState, Account: AccountState{
		AccountID: "acct-1",
		Currency:  "USD",
		Balance:   decimal.NewFromInt(5000),
	}}))

	persisted, ok := db.GetAccount("acct-1")
	require.True(t, ok)
	assert.True(t, persisted.Balance.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, Currency("USD"), portfolio.BaseCurrency())
}
