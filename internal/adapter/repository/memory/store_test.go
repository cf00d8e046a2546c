package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

func seedUser(t *testing.T, store *Store, name, email, balance string) domain.User {
	t.Helper()
	user, err := store.Create(context.Background(), domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Balance:      balance,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func TestDepositUpdatesBalanceAndAppendsRecord(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "Ada", "ada@example.com", "100.00")

	updated, record, err := store.Deposit(context.Background(), user.ID, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if updated.Balance != "150.00" {
		t.Fatalf("balance = %s, want 150.00", updated.Balance)
	}
	if record.Kind != domain.TransactionKindDeposit || record.Balance != "150.00" {
		t.Fatalf("record = %+v, want deposit with balance 150.00", record)
	}

	records, err := store.ListByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
}

func TestWithdrawOverdraftLeavesNoTrace(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "Ada", "ada@example.com", "150.00")

	_, _, err := store.Withdraw(context.Background(), user.ID, decimal.NewFromInt(200))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	current, err := store.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Balance != "150.00" {
		t.Fatalf("balance = %s, want unchanged 150.00", current.Balance)
	}

	records, err := store.ListByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0 after failed withdrawal", len(records))
	}
}

func TestWithdrawUnknownUser(t *testing.T) {
	store := NewStore()

	_, _, err := store.Withdraw(context.Background(), "missing", decimal.NewFromInt(10))
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestTransferMovesFundsAndWritesMatchedPair(t *testing.T) {
	store := NewStore()
	sender := seedUser(t, store, "Ada", "ada@example.com", "150.00")
	recipient := seedUser(t, store, "Bob", "bob@example.com", "0.00")

	updatedSender, senderRecord, err := store.Transfer(context.Background(), sender.ID, recipient.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if updatedSender.Balance != "50.00" {
		t.Fatalf("sender balance = %s, want 50.00", updatedSender.Balance)
	}
	if senderRecord.Kind != domain.TransactionKindTransferSent || senderRecord.Balance != "50.00" {
		t.Fatalf("sender record = %+v", senderRecord)
	}
	if senderRecord.CounterpartyID == nil || *senderRecord.CounterpartyID != recipient.ID {
		t.Fatal("sender record missing recipient counterparty")
	}

	updatedRecipient, err := store.GetByID(context.Background(), recipient.ID)
	if err != nil {
		t.Fatalf("get recipient: %v", err)
	}
	if updatedRecipient.Balance != "100.00" {
		t.Fatalf("recipient balance = %s, want 100.00", updatedRecipient.Balance)
	}

	recipientRecords, err := store.ListByUserID(context.Background(), recipient.ID)
	if err != nil {
		t.Fatalf("list recipient: %v", err)
	}
	if len(recipientRecords) != 1 {
		t.Fatalf("recipient records = %d, want 1", len(recipientRecords))
	}
	received := recipientRecords[0]
	if received.Kind != domain.TransactionKindTransferReceived || received.Balance != "100.00" || received.Amount != senderRecord.Amount {
		t.Fatalf("received record = %+v", received)
	}
	if received.CounterpartyID == nil || *received.CounterpartyID != sender.ID {
		t.Fatal("received record missing sender counterparty")
	}
}

func TestTransferInsufficientBalanceChangesNothing(t *testing.T) {
	store := NewStore()
	sender := seedUser(t, store, "Ada", "ada@example.com", "10.00")
	recipient := seedUser(t, store, "Bob", "bob@example.com", "5.00")

	_, _, err := store.Transfer(context.Background(), sender.ID, recipient.ID, decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	gotSender, _ := store.GetByID(context.Background(), sender.ID)
	gotRecipient, _ := store.GetByID(context.Background(), recipient.ID)
	if gotSender.Balance != "10.00" || gotRecipient.Balance != "5.00" {
		t.Fatalf("balances = %s / %s, want unchanged", gotSender.Balance, gotRecipient.Balance)
	}

	senderRecords, _ := store.ListByUserID(context.Background(), sender.ID)
	recipientRecords, _ := store.ListByUserID(context.Background(), recipient.ID)
	if len(senderRecords) != 0 || len(recipientRecords) != 0 {
		t.Fatal("expected no records after failed transfer")
	}
}

func TestConcurrentWithdrawalsAtMostOneSucceeds(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "Ada", "ada@example.com", "100.00")

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Withdraw(context.Background(), user.ID, decimal.NewFromInt(100))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	current, _ := store.GetByID(context.Background(), user.ID)
	if current.Balance != "0.00" {
		t.Fatalf("balance = %s, want 0.00", current.Balance)
	}
}

func TestBalanceMatchesLatestRecord(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "Ada", "ada@example.com", "0.00")

	amounts := []int64{25, 10, 40}
	for _, amount := range amounts {
		if _, _, err := store.Deposit(context.Background(), user.ID, decimal.NewFromInt(amount)); err != nil {
			t.Fatalf("deposit %d: %v", amount, err)
		}
	}
	if _, _, err := store.Withdraw(context.Background(), user.ID, decimal.NewFromInt(30)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	current, _ := store.GetByID(context.Background(), user.ID)
	records, _ := store.ListByUserID(context.Background(), user.ID)
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}
	if records[0].Balance != current.Balance {
		t.Fatalf("latest record balance %s != stored balance %s", records[0].Balance, current.Balance)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "Ada", "ada@example.com", "0.00")

	for i := 1; i <= 5; i++ {
		if _, _, err := store.Deposit(context.Background(), user.ID, decimal.NewFromInt(int64(i))); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}

	records, err := store.ListByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatalf("records out of order at %d", i)
		}
	}
	if records[0].Amount != "5.00" {
		t.Fatalf("newest record amount = %s, want 5.00", records[0].Amount)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	store := NewStore()
	seedUser(t, store, "Ada", "ada@example.com", "0.00")

	_, err := store.Create(context.Background(), domain.User{
		Name:         "Imposter",
		Email:        "ADA@example.com",
		PasswordHash: "x",
		Balance:      "0.00",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}
