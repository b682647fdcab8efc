package engine

import "github.com/yanun0323/decimal"

// AccountState is a point-in-time balance/margin report for the trader's
// single account, surfaced by the venue and applied by the Account Updater.
type AccountState struct {
	AccountID AccountID
	Currency  Currency
	Balance   decimal.Decimal
	Margin    decimal.Decimal
}

// Account is the engine's cached view of the single account it hosts.
type Account struct {
	AccountID AccountID
	Currency  Currency
	Balance   decimal.Decimal
	Margin    decimal.Decimal
}

// NewAccount constructs an account with zero balances.
func NewAccount(id AccountID) Account {
	return Account{
		AccountID: id,
		Balance:   decimal.NewFromInt(0),
		Margin:    decimal.NewFromInt(0),
	}
}

// Apply replaces the cached balance/margin with a freshly reported state.
func (a *Account) Apply(state AccountState) {
	a.Currency = state.Currency
	a.Balance = state.Balance
	a.Margin = state.Margin
}
