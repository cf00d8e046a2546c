package services

import (
	"context"
	"strings"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

type TransactionService struct {
	ledgerRepo      repo_interfaces.LedgerRepository
	transactionRepo repo_interfaces.TransactionRepository
}

func NewTransactionService(
	ledgerRepo repo_interfaces.LedgerRepository,
	transactionRepo repo_interfaces.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		ledgerRepo:      ledgerRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *TransactionService) Apply(ctx context.Context, req models.TransactionRequest) (models.ApplyTransactionResponse, error) {
	logger.Info("transaction service apply request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transaction service apply validation failed", err, nil)
		return models.ApplyTransactionResponse{}, err
	}

	userID := strings.TrimSpace(req.UserID)
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil {
		return models.ApplyTransactionResponse{}, err
	}

	var (
		user   domain.User
		record domain.Transaction
	)
	switch strings.TrimSpace(req.Type) {
	case string(domain.TransactionKindDeposit):
		user, record, err = s.ledgerRepo.Deposit(ctx, userID, amount)
	case string(domain.TransactionKindWithdraw):
		user, record, err = s.ledgerRepo.Withdraw(ctx, userID, amount)
	}
	if err != nil {
		logger.Error("transaction service apply failed", err, logger.Fields{
			"userId": userID,
			"type":   req.Type,
		})
		return models.ApplyTransactionResponse{}, err
	}

	logger.Info("transaction service apply success", logger.Fields{
		"userId":        user.ID,
		"transactionId": record.ID,
		"type":          record.Kind,
		"balance":       user.Balance,
	})

	return models.ApplyTransactionResponse{
		User:        models.NewUserResponse(user),
		Transaction: models.NewTransactionResponse(record),
	}, nil
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]models.TransactionResponse, error) {
	logger.Info("transaction service list request", logger.Fields{
		"userId": userID,
	})

	records, err := s.transactionRepo.ListByUserID(ctx, strings.TrimSpace(userID))
	if err != nil {
		logger.Error("transaction service list failed", err, logger.Fields{
			"userId": userID,
		})
		return nil, err
	}

	responses := make([]models.TransactionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, models.NewTransactionResponse(record))
	}

	return responses, nil
}
