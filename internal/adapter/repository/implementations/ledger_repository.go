package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// LedgerRepository performs the balance postings. Each posting runs inside
// one database transaction so the balance update and the ledger record(s)
// commit together or roll back together, and the guarded UPDATE keeps a
// racing debit from overdrawing the row.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	logger.Info("ledger repository deposit", logger.Fields{
		"userId": userID,
		"amount": amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("begin deposit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const creditQuery = `
UPDATE users
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1
RETURNING id, name, email, password_hash, account_number, balance, created_at, updated_at`

	var user domain.User
	user, err = scanUserRow(tx.QueryRowContext(ctx, creditQuery, userID, amount.StringFixed(2)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrRecordNotFound
			return domain.User{}, domain.Transaction{}, err
		}
		logger.Error("ledger repository deposit credit failed", err, logger.Fields{
			"userId": userID,
		})
		return domain.User{}, domain.Transaction{}, fmt.Errorf("credit user: %w", err)
	}

	var record domain.Transaction
	record, err = insertTransaction(ctx, tx, domain.Transaction{
		UserID:  user.ID,
		Kind:    domain.TransactionKindDeposit,
		Amount:  amount.StringFixed(2),
		Balance: user.Balance,
	})
	if err != nil {
		return domain.User{}, domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit deposit failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("commit deposit transaction: %w", err)
	}

	logger.Info("ledger repository deposit success", logger.Fields{
		"userId":        user.ID,
		"transactionId": record.ID,
	})
	return user, record, nil
}

func (r *LedgerRepository) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	logger.Info("ledger repository withdraw", logger.Fields{
		"userId": userID,
		"amount": amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("begin withdraw transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const debitQuery = `
UPDATE users
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric
RETURNING id, name, email, password_hash, account_number, balance, created_at, updated_at`

	var user domain.User
	user, err = scanUserRow(tx.QueryRowContext(ctx, debitQuery, userID, amount.StringFixed(2)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = r.classifyDebitFailure(ctx, tx, userID)
			return domain.User{}, domain.Transaction{}, err
		}
		logger.Error("ledger repository withdraw debit failed", err, logger.Fields{
			"userId": userID,
		})
		return domain.User{}, domain.Transaction{}, fmt.Errorf("debit user: %w", err)
	}

	var record domain.Transaction
	record, err = insertTransaction(ctx, tx, domain.Transaction{
		UserID:  user.ID,
		Kind:    domain.TransactionKindWithdraw,
		Amount:  amount.StringFixed(2),
		Balance: user.Balance,
	})
	if err != nil {
		return domain.User{}, domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit withdraw failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("commit withdraw transaction: %w", err)
	}

	logger.Info("ledger repository withdraw success", logger.Fields{
		"userId":        user.ID,
		"transactionId": record.ID,
	})
	return user, record, nil
}

func (r *LedgerRepository) Transfer(ctx context.Context, senderID string, recipientID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	logger.Info("ledger repository transfer", logger.Fields{
		"senderId":    senderID,
		"recipientId": recipientID,
		"amount":      amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger repository begin tx failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const debitSenderQuery = `
UPDATE users
SET balance = balance - $2::numeric,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric
RETURNING id, name, email, password_hash, account_number, balance, created_at, updated_at`

	var sender domain.User
	sender, err = scanUserRow(tx.QueryRowContext(ctx, debitSenderQuery, senderID, amount.StringFixed(2)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = r.classifyDebitFailure(ctx, tx, senderID)
			return domain.User{}, domain.Transaction{}, err
		}
		logger.Error("ledger repository transfer debit failed", err, logger.Fields{
			"senderId": senderID,
		})
		return domain.User{}, domain.Transaction{}, fmt.Errorf("debit sender: %w", err)
	}

	const creditRecipientQuery = `
UPDATE users
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1
RETURNING id, name, email, password_hash, account_number, balance, created_at, updated_at`

	var recipient domain.User
	recipient, err = scanUserRow(tx.QueryRowContext(ctx, creditRecipientQuery, recipientID, amount.StringFixed(2)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrInvalidCounterparty
			return domain.User{}, domain.Transaction{}, err
		}
		logger.Error("ledger repository transfer credit failed", err, logger.Fields{
			"recipientId": recipientID,
		})
		return domain.User{}, domain.Transaction{}, fmt.Errorf("credit recipient: %w", err)
	}

	var senderRecord domain.Transaction
	senderRecord, err = insertTransaction(ctx, tx, domain.Transaction{
		UserID:           sender.ID,
		Kind:             domain.TransactionKindTransferSent,
		Amount:           amount.StringFixed(2),
		Balance:          sender.Balance,
		CounterpartyID:   &recipient.ID,
		CounterpartyName: &recipient.Name,
	})
	if err != nil {
		return domain.User{}, domain.Transaction{}, err
	}

	_, err = insertTransaction(ctx, tx, domain.Transaction{
		UserID:           recipient.ID,
		Kind:             domain.TransactionKindTransferReceived,
		Amount:           amount.StringFixed(2),
		Balance:          recipient.Balance,
		CounterpartyID:   &sender.ID,
		CounterpartyName: &sender.Name,
	})
	if err != nil {
		return domain.User{}, domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger repository commit transfer failed", err, nil)
		return domain.User{}, domain.Transaction{}, fmt.Errorf("commit transfer transaction: %w", err)
	}

	logger.Info("ledger repository transfer success", logger.Fields{
		"senderId":      sender.ID,
		"recipientId":   recipient.ID,
		"transactionId": senderRecord.ID,
	})
	return sender, senderRecord, nil
}

// classifyDebitFailure turns a zero-row guarded debit into the right
// sentinel: the row is either missing or short of funds.
func (r *LedgerRepository) classifyDebitFailure(ctx context.Context, tx *sql.Tx, userID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("classify debit failure: %w", err)
	}
	if !exists {
		return domain.ErrRecordNotFound
	}
	return domain.ErrInsufficientBalance
}

func insertTransaction(ctx context.Context, tx *sql.Tx, record domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	user_id,
	kind,
	amount,
	balance,
	counterparty_id,
	counterparty_name
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	if err := tx.QueryRowContext(
		ctx,
		query,
		record.UserID,
		record.Kind,
		record.Amount,
		record.Balance,
		record.CounterpartyID,
		record.CounterpartyName,
	).Scan(&record.ID, &record.CreatedAt); err != nil {
		logger.Error("ledger repository insert transaction failed", err, logger.Fields{
			"userId": record.UserID,
			"kind":   record.Kind,
		})
		return domain.Transaction{}, fmt.Errorf("insert transaction record: %w", err)
	}

	return record, nil
}

func scanUserRow(row *sql.Row) (domain.User, error) {
	var (
		user          domain.User
		accountNumber sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&accountNumber,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}

	if accountNumber.Valid {
		value := accountNumber.String
		user.AccountNumber = &value
	}

	return user, nil
}
