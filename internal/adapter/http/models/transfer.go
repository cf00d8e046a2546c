package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type TransferRequest struct {
	SenderID               string      `json:"senderId"`
	RecipientAccountNumber json.Number `json:"recipientAccountNumber"`
	RecipientName          string      `json:"recipientName"`
	Amount                 json.Number `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.SenderID) == "" {
		errs = append(errs, "senderId is required")
	}
	accountNumber := strings.TrimSpace(r.RecipientAccountNumber.String())
	if accountNumber == "" {
		errs = append(errs, "recipientAccountNumber is required")
	} else if !isDigits(accountNumber) {
		errs = append(errs, "recipientAccountNumber must be numeric")
	}
	if strings.TrimSpace(r.RecipientName) == "" {
		errs = append(errs, "recipientName is required")
	}
	if err := validateAmount(r.Amount); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type TransferResponse struct {
	Sender            UserResponse        `json:"sender"`
	SenderTransaction TransactionResponse `json:"senderTransaction"`
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(value) > 0
}
