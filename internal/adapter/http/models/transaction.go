package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionRequest struct {
	UserID string      `json:"userId"`
	Type   string      `json:"type"`
	Amount json.Number `json:"amount"`
}

func (r TransactionRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	}
	kind := strings.TrimSpace(r.Type)
	if kind == "" {
		errs = append(errs, "type is required")
	} else if kind != string(domain.TransactionKindDeposit) && kind != string(domain.TransactionKindWithdraw) {
		errs = append(errs, "type must be deposit or withdraw")
	}
	if err := validateAmount(r.Amount); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type TransactionResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId"`
	Type             string  `json:"type"`
	Amount           string  `json:"amount"`
	Balance          string  `json:"balance"`
	CounterpartyID   *string `json:"counterpartyId,omitempty"`
	CounterpartyName *string `json:"counterpartyName,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

func NewTransactionResponse(transaction domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:               transaction.ID,
		UserID:           transaction.UserID,
		Type:             string(transaction.Kind),
		Amount:           transaction.Amount,
		Balance:          transaction.Balance,
		CounterpartyID:   transaction.CounterpartyID,
		CounterpartyName: transaction.CounterpartyName,
		CreatedAt:        transaction.CreatedAt.Format(time.RFC3339),
	}
}

type ApplyTransactionResponse struct {
	User        UserResponse        `json:"user"`
	Transaction TransactionResponse `json:"transaction"`
}

func validateAmount(amount json.Number) error {
	raw := strings.TrimSpace(amount.String())
	if raw == "" {
		return errors.New("amount is required")
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.New("amount must be a number")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be greater than zero")
	}
	// Postings are fixed to two decimal places; anything finer would
	// round away before it reaches the ledger.
	if !value.Equal(value.Round(2)) {
		return errors.New("amount cannot have more than two decimal places")
	}

	return nil
}
