package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of the repository contracts, used by
// tests and local development. A single mutex gives every posting the same
// all-or-nothing behavior the postgres transaction does.
type Store struct {
	mu           sync.Mutex
	users        map[string]domain.User
	transactions []domain.Transaction
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]domain.User),
	}
}

func (s *Store) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user

	return user, nil
}

func (s *Store) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return user, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s *Store) GetByAccountNumberAndName(_ context.Context, accountNumber string, name string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.AccountNumber != nil && *user.AccountNumber == accountNumber && user.Name == name {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (s *Store) AssignAccountNumber(_ context.Context, id string, accountNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.AccountNumber != nil && *user.AccountNumber == accountNumber && user.ID != id {
			return fmt.Errorf("account number %s already assigned", accountNumber)
		}
	}

	user, ok := s.users[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	user.AccountNumber = &accountNumber
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return nil
}

func (s *Store) Deposit(_ context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.Transaction{}, domain.ErrRecordNotFound
	}

	balance, err := decimal.NewFromString(user.Balance)
	if err != nil {
		return domain.User{}, domain.Transaction{}, fmt.Errorf("parse balance: %w", err)
	}

	user.Balance = balance.Add(amount).StringFixed(2)
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user

	record := s.appendTransaction(domain.Transaction{
		UserID:  user.ID,
		Kind:    domain.TransactionKindDeposit,
		Amount:  amount.StringFixed(2),
		Balance: user.Balance,
	})

	return user, record, nil
}

func (s *Store) Withdraw(_ context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.Transaction{}, domain.ErrRecordNotFound
	}

	balance, err := decimal.NewFromString(user.Balance)
	if err != nil {
		return domain.User{}, domain.Transaction{}, fmt.Errorf("parse balance: %w", err)
	}
	if balance.LessThan(amount) {
		return domain.User{}, domain.Transaction{}, domain.ErrInsufficientBalance
	}

	user.Balance = balance.Sub(amount).StringFixed(2)
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user

	record := s.appendTransaction(domain.Transaction{
		UserID:  user.ID,
		Kind:    domain.TransactionKindWithdraw,
		Amount:  amount.StringFixed(2),
		Balance: user.Balance,
	})

	return user, record, nil
}

func (s *Store) Transfer(_ context.Context, senderID string, recipientID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.users[senderID]
	if !ok {
		return domain.User{}, domain.Transaction{}, domain.ErrRecordNotFound
	}
	recipient, ok := s.users[recipientID]
	if !ok {
		return domain.User{}, domain.Transaction{}, domain.ErrInvalidCounterparty
	}

	senderBalance, err := decimal.NewFromString(sender.Balance)
	if err != nil {
		return domain.User{}, domain.Transaction{}, fmt.Errorf("parse sender balance: %w", err)
	}
	if senderBalance.LessThan(amount) {
		return domain.User{}, domain.Transaction{}, domain.ErrInsufficientBalance
	}
	recipientBalance, err := decimal.NewFromString(recipient.Balance)
	if err != nil {
		return domain.User{}, domain.Transaction{}, fmt.Errorf("parse recipient balance: %w", err)
	}

	now := time.Now().UTC()
	sender.Balance = senderBalance.Sub(amount).StringFixed(2)
	sender.UpdatedAt = now
	recipient.Balance = recipientBalance.Add(amount).StringFixed(2)
	recipient.UpdatedAt = now
	s.users[senderID] = sender
	s.users[recipientID] = recipient

	senderRecord := s.appendTransaction(domain.Transaction{
		UserID:           sender.ID,
		Kind:             domain.TransactionKindTransferSent,
		Amount:           amount.StringFixed(2),
		Balance:          sender.Balance,
		CounterpartyID:   &recipient.ID,
		CounterpartyName: &recipient.Name,
	})
	s.appendTransaction(domain.Transaction{
		UserID:           recipient.ID,
		Kind:             domain.TransactionKindTransferReceived,
		Amount:           amount.StringFixed(2),
		Balance:          recipient.Balance,
		CounterpartyID:   &sender.ID,
		CounterpartyName: &sender.Name,
	})

	return sender, senderRecord, nil
}

func (s *Store) ListByUserID(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			out = append(out, s.transactions[i])
		}
	}
	return out, nil
}

// appendTransaction must be called with the mutex held.
func (s *Store) appendTransaction(record domain.Transaction) domain.Transaction {
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, record)
	return record
}
