package repo_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type TransactionRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]domain.Transaction, error)
}
