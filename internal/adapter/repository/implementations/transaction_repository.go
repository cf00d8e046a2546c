package implementations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	logger.Info("transaction repository list by user id", logger.Fields{
		"userId": userID,
	})

	const query = `
SELECT id, user_id, kind, amount, balance, counterparty_id, counterparty_name, created_at
FROM transactions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("transaction repository list failed", err, logger.Fields{
			"userId": userID,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			transaction      domain.Transaction
			counterpartyID   sql.NullString
			counterpartyName sql.NullString
		)

		if err := rows.Scan(
			&transaction.ID,
			&transaction.UserID,
			&transaction.Kind,
			&transaction.Amount,
			&transaction.Balance,
			&counterpartyID,
			&counterpartyName,
			&transaction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		if counterpartyID.Valid {
			value := counterpartyID.String
			transaction.CounterpartyID = &value
		}
		if counterpartyName.Valid {
			value := counterpartyName.String
			transaction.CounterpartyName = &value
		}

		transactions = append(transactions, transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	logger.Info("transaction repository list success", logger.Fields{
		"userId": userID,
		"count":  len(transactions),
	})

	return transactions, nil
}
