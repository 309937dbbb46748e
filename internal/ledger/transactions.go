package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pocketledger/pocketledger/internal/model"
)

func (s *Store) validateTransaction(tx model.Transaction) error {
	if !tx.Amount.IsPositive() {
		return invalid("amount", "must be positive")
	}
	if !tx.Type.Valid() {
		return invalid("type", fmt.Sprintf("unknown transaction type %q", tx.Type))
	}
	if tx.Date.IsZero() {
		return invalid("date", "must be set")
	}
	if _, err := s.AccountByID(tx.AccountID); err != nil {
		return invalid("accountId", "unknown account")
	}
	if _, err := s.CategoryByID(tx.CategoryID); err != nil {
		return invalid("categoryId", "unknown category")
	}
	if tx.Type == model.Transfer {
		if tx.ToAccountID == "" {
			return invalid("toAccountId", "required for transfers")
		}
		if tx.ToAccountID == tx.AccountID {
			return invalid("toAccountId", "transfer source and destination must differ")
		}
		if _, err := s.AccountByID(tx.ToAccountID); err != nil {
			return invalid("toAccountId", "unknown account")
		}
	} else if tx.ToAccountID != "" {
		return invalid("toAccountId", "only transfers have a destination account")
	}
	return nil
}

// commitTransactions persists the transaction list and the refreshed
// balance cache. Balance application is all-or-nothing with the record:
// on a persist failure both collections are restored in memory and the
// previous transaction document is rewritten, so no orphan record ever
// survives with an unapplied delta.
func (s *Store) commitTransactions(prevTx []model.Transaction, prevAccounts []model.Account) error {
	s.rebuildBalancesLocked()
	if err := s.persist(KeyTransactions); err != nil {
		s.transactions = prevTx
		s.accounts = prevAccounts
		return err
	}
	if err := s.persist(KeyAccounts); err != nil {
		s.transactions = prevTx
		s.accounts = prevAccounts
		if rerr := s.persist(KeyTransactions); rerr != nil {
			s.log.Error().Err(rerr).Msg("rollback rewrite of transactions failed")
		}
		return err
	}
	return nil
}

func (s *Store) snapshotTx() ([]model.Transaction, []model.Account) {
	tx := make([]model.Transaction, len(s.transactions))
	copy(tx, s.transactions)
	accounts := make([]model.Account, len(s.accounts))
	copy(accounts, s.accounts)
	return tx, accounts
}

// AddTransaction validates and appends a transaction, applying its
// balance delta unless the date is still in the future.
func (s *Store) AddTransaction(tx model.Transaction) (model.Transaction, error) {
	if err := s.validateTransaction(tx); err != nil {
		return model.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := s.clock.Now()
	tx.Date = tx.Date.UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now

	prevTx, prevAccounts := s.snapshotTx()
	s.transactions = append(s.transactions, tx)
	if err := s.commitTransactions(prevTx, prevAccounts); err != nil {
		return model.Transaction{}, err
	}
	s.emit(KeyTransactions, OpAdd, tx.ID)
	return tx, nil
}

// UpdateTransaction replaces the record with the same ID, reverting the
// old delta and applying the new one.
func (s *Store) UpdateTransaction(tx model.Transaction) error {
	idx := -1
	for i := range s.transactions {
		if s.transactions[i].ID == tx.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return notFound("transaction", tx.ID)
	}
	if err := s.validateTransaction(tx); err != nil {
		return err
	}
	prevTx, prevAccounts := s.snapshotTx()
	tx.Date = tx.Date.UTC()
	tx.CreatedAt = prevTx[idx].CreatedAt
	tx.UpdatedAt = s.clock.Now()
	s.transactions[idx] = tx
	if err := s.commitTransactions(prevTx, prevAccounts); err != nil {
		return err
	}
	s.emit(KeyTransactions, OpUpdate, tx.ID)
	return nil
}

// DeleteTransaction removes the record and reverts its applied delta.
func (s *Store) DeleteTransaction(id string) error {
	idx := -1
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return notFound("transaction", id)
	}
	prevTx, prevAccounts := s.snapshotTx()
	s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)
	if err := s.commitTransactions(prevTx, prevAccounts); err != nil {
		return err
	}
	s.emit(KeyTransactions, OpDelete, id)
	return nil
}

// Transactions returns a copy of all transactions, future-dated ones
// included.
func (s *Store) Transactions() []model.Transaction {
	out := make([]model.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Store) TransactionByID(id string) (model.Transaction, error) {
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.Transaction{}, notFound("transaction", id)
}

// TransactionsInPeriod returns transactions in [start, end) excluding
// future-dated entries. This is the financial-summary view; the raw
// upcoming list is Upcoming.
func (s *Store) TransactionsInPeriod(start, end time.Time) []model.Transaction {
	now := s.clock.Now()
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		if tx.Date.After(now) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// TransactionsForAccount returns every transaction touching the account
// as source or destination.
func (s *Store) TransactionsForAccount(accountID string) []model.Transaction {
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.AccountID == accountID || tx.ToAccountID == accountID {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionsInGroup returns all instances materialized from one
// recurring series, ordered by date.
func (s *Store) TransactionsInGroup(groupID string) []model.Transaction {
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.RecurringGroupID == groupID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Upcoming returns future-dated transactions, soonest first.
func (s *Store) Upcoming() []model.Transaction {
	now := s.clock.Now()
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.Date.After(now) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DeleteGroupAfter removes every transaction in the group dated
// strictly after cutoff and clears the recurring flag on the survivors.
// Past instances stay as historical fact. Returns the number removed.
func (s *Store) DeleteGroupAfter(groupID string, cutoff time.Time) (int, error) {
	prevTx, prevAccounts := s.snapshotTx()
	kept := s.transactions[:0:0]
	removed := 0
	for _, tx := range s.transactions {
		if tx.RecurringGroupID == groupID && tx.Date.After(cutoff) {
			removed++
			continue
		}
		if tx.RecurringGroupID == groupID {
			tx.IsRecurring = false
		}
		kept = append(kept, tx)
	}
	s.transactions = kept
	if err := s.commitTransactions(prevTx, prevAccounts); err != nil {
		return 0, err
	}
	s.emit(KeyTransactions, OpDelete, groupID)
	return removed, nil
}
