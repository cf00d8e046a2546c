package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/lib/pq"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	logger.Info("user repository create", logger.Fields{
		"email": user.Email,
		"name":  user.Name,
	})

	const query = `
INSERT INTO users (
	name,
	email,
	password_hash,
	balance
) VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`

	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Balance,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			logger.Info("user repository duplicate email", logger.Fields{
				"email": user.Email,
			})
			return domain.User{}, domain.ErrDuplicateEmail
		}
		logger.Error("user repository create failed", err, logger.Fields{
			"email": user.Email,
		})
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt

	logger.Info("user repository create success", logger.Fields{
		"userId": user.ID,
	})

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
SELECT id, name, email, password_hash, account_number, balance, created_at, updated_at
FROM users
WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
SELECT id, name, email, password_hash, account_number, balance, created_at, updated_at
FROM users
WHERE LOWER(email) = LOWER($1)`

	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByAccountNumberAndName(ctx context.Context, accountNumber string, name string) (domain.User, error) {
	const query = `
SELECT id, name, email, password_hash, account_number, balance, created_at, updated_at
FROM users
WHERE account_number = $1
  AND name = $2`

	return r.getOne(ctx, query, accountNumber, name)
}

func (r *UserRepository) AssignAccountNumber(ctx context.Context, id string, accountNumber string) error {
	logger.Info("user repository assign account number", logger.Fields{
		"userId":        id,
		"accountNumber": accountNumber,
	})

	const query = `
UPDATE users
SET account_number = $2,
    updated_at = NOW()
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, accountNumber)
	if err != nil {
		logger.Error("user repository assign account number failed", err, logger.Fields{
			"userId": id,
		})
		return fmt.Errorf("assign account number: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign account number rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}

	logger.Info("user repository assign account number success", logger.Fields{
		"userId":        id,
		"accountNumber": accountNumber,
	})
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var (
		user          domain.User
		accountNumber sql.NullString
	)

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&accountNumber,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		logger.Error("user repository get failed", err, nil)
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	if accountNumber.Valid {
		value := accountNumber.String
		user.AccountNumber = &value
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
