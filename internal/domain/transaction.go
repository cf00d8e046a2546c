package domain

import "time"

type TransactionKind string

const (
	TransactionKindDeposit          TransactionKind = "deposit"
	TransactionKindWithdraw         TransactionKind = "withdraw"
	TransactionKindTransferSent     TransactionKind = "transfer_sent"
	TransactionKindTransferReceived TransactionKind = "transfer_received"
)

type Transaction struct {
	ID               string
	UserID           string
	Kind             TransactionKind
	Amount           string
	Balance          string
	CounterpartyID   *string
	CounterpartyName *string
	CreatedAt        time.Time
}
