package engine

import "github.com/yanun0323/logs"

// updateAccount applies a reported AccountState to the engine's single
// cached Account. The first event for the engine's configured AccountID
// creates and installs the account, persists it, and seeds the Portfolio's
// base currency; later events for the same account are applied in place and
// persisted; events for any other AccountID are warned about and dropped.
func (e *Engine) updateAccount(state AccountState) error {
	if state.AccountID != e.accountID {
		logs.Warnf("engine: account state for account_id=%s does not match hosted account_id=%s, dropping", state.AccountID, e.accountID)
		return nil
	}

	if e.account == nil {
		acct := NewAccount(state.AccountID)
		acct.Apply(state)
		e.account = &acct
		e.portfolio.SetBaseCurrency(state.Currency)
		return e.db.AddAccount(*e.account)
	}

	e.account.Apply(state)
	return e.db.UpdateAccount(*e.account)
}
