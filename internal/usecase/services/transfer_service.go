package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

type TransferService struct {
	userRepo   repo_interfaces.UserRepository
	ledgerRepo repo_interfaces.LedgerRepository
}

func NewTransferService(
	userRepo repo_interfaces.UserRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
) *TransferService {
	return &TransferService{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
	}
}

func (s *TransferService) Transfer(ctx context.Context, req models.TransferRequest) (models.TransferResponse, error) {
	logger.Info("transfer service request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transfer service validation failed", err, nil)
		return models.TransferResponse{}, err
	}

	senderID := strings.TrimSpace(req.SenderID)
	recipientAccountNumber := strings.TrimSpace(req.RecipientAccountNumber.String())
	recipientName := strings.TrimSpace(req.RecipientName)
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount.String()))
	if err != nil {
		return models.TransferResponse{}, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Info("transfer service sender not found", logger.Fields{
				"senderId": senderID,
			})
			return models.TransferResponse{}, domain.ErrInvalidCounterparty
		}
		logger.Error("transfer service sender lookup failed", err, logger.Fields{
			"senderId": senderID,
		})
		return models.TransferResponse{}, err
	}

	// The recipient must match both the account number and the display
	// name before any money moves.
	recipient, err := s.userRepo.GetByAccountNumberAndName(ctx, recipientAccountNumber, recipientName)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Info("transfer service recipient not found", logger.Fields{
				"recipientAccountNumber": recipientAccountNumber,
			})
			return models.TransferResponse{}, domain.ErrInvalidCounterparty
		}
		logger.Error("transfer service recipient lookup failed", err, logger.Fields{
			"recipientAccountNumber": recipientAccountNumber,
		})
		return models.TransferResponse{}, err
	}

	if recipient.ID == sender.ID {
		logger.Info("transfer service self transfer rejected", logger.Fields{
			"senderId": sender.ID,
		})
		return models.TransferResponse{}, domain.ErrInvalidCounterparty
	}

	senderBalance, err := decimal.NewFromString(strings.TrimSpace(sender.Balance))
	if err != nil {
		return models.TransferResponse{}, fmt.Errorf("parse sender balance: %w", err)
	}
	if senderBalance.LessThan(amount) {
		logger.Info("transfer service insufficient balance", logger.Fields{
			"senderId": sender.ID,
		})
		return models.TransferResponse{}, domain.ErrInsufficientBalance
	}

	// The posting re-checks the balance under the row lock, so a race
	// past the check above still cannot overdraw.
	updatedSender, senderRecord, err := s.ledgerRepo.Transfer(ctx, sender.ID, recipient.ID, amount)
	if err != nil {
		logger.Error("transfer service posting failed", err, logger.Fields{
			"senderId":    sender.ID,
			"recipientId": recipient.ID,
		})
		return models.TransferResponse{}, err
	}

	logger.Info("transfer service success", logger.Fields{
		"senderId":      updatedSender.ID,
		"recipientId":   recipient.ID,
		"transactionId": senderRecord.ID,
	})

	return models.TransferResponse{
		Sender:            models.NewUserResponse(updatedSender),
		SenderTransaction: models.NewTransactionResponse(senderRecord),
	}, nil
}
