package repo_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerRepository holds the balance-mutating postings. Every method runs
// as a single atomic unit: the balance update and the transaction record(s)
// are committed together or not at all.
type LedgerRepository interface {
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
	Transfer(ctx context.Context, senderID string, recipientID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
}
