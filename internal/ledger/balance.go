package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// ApplyDelta adds tx's balance effect to the balances map. Income adds
// to the source account, expense subtracts, transfer moves the amount
// from source to destination. Amounts are stored positive; the sign
// lives here.
func ApplyDelta(balances map[string]decimal.Decimal, tx model.Transaction) {
	switch tx.Type {
	case model.Income:
		balances[tx.AccountID] = balances[tx.AccountID].Add(tx.Amount)
	case model.Expense:
		balances[tx.AccountID] = balances[tx.AccountID].Sub(tx.Amount)
	case model.Transfer:
		balances[tx.AccountID] = balances[tx.AccountID].Sub(tx.Amount)
		if tx.ToAccountID != "" {
			balances[tx.ToAccountID] = balances[tx.ToAccountID].Add(tx.Amount)
		}
	}
}

// RevertDelta is the exact negation of ApplyDelta:
// RevertDelta(ApplyDelta(tx)) leaves balances unchanged.
func RevertDelta(balances map[string]decimal.Decimal, tx model.Transaction) {
	switch tx.Type {
	case model.Income:
		balances[tx.AccountID] = balances[tx.AccountID].Sub(tx.Amount)
	case model.Expense:
		balances[tx.AccountID] = balances[tx.AccountID].Add(tx.Amount)
	case model.Transfer:
		balances[tx.AccountID] = balances[tx.AccountID].Add(tx.Amount)
		if tx.ToAccountID != "" {
			balances[tx.ToAccountID] = balances[tx.ToAccountID].Sub(tx.Amount)
		}
	}
}

// GetAccountBalance returns the account's cached balance. The cache is
// rebuilt from applied deltas after every transaction mutation, so it
// always equals the replayed sum for non-future transactions.
func (s *Store) GetAccountBalance(id string) (decimal.Decimal, error) {
	a, err := s.AccountByID(id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return a.Balance, nil
}

// replayBalances computes every account's balance from scratch by
// replaying all non-future transaction deltas over zero.
func (s *Store) replayBalances() map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(s.accounts))
	for _, a := range s.accounts {
		balances[a.ID] = decimal.Zero
	}
	for _, tx := range s.transactions {
		if s.isFuture(tx.Date) {
			continue
		}
		ApplyDelta(balances, tx)
	}
	return balances
}

// rebuildBalancesLocked refreshes the cached balance of every account
// from the replayed ledger. Memory only; the caller persists.
func (s *Store) rebuildBalancesLocked() {
	balances := s.replayBalances()
	for i := range s.accounts {
		s.accounts[i].Balance = balances[s.accounts[i].ID]
	}
}

// RebuildBalances recomputes all cached balances from the ledger and
// persists the result. Run at startup and after every generation pass
// so that transactions crossing the "now" boundary get applied.
func (s *Store) RebuildBalances() error {
	prev := make([]model.Account, len(s.accounts))
	copy(prev, s.accounts)
	s.rebuildBalancesLocked()
	if err := s.persist(KeyAccounts); err != nil {
		s.accounts = prev
		return err
	}
	return nil
}
