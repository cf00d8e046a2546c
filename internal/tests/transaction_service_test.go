package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/usecase/services"
	"github.com/shopspring/decimal"
)

type ledgerRepoStub struct {
	depositFn  func(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
	withdrawFn func(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
	transferFn func(ctx context.Context, senderID string, recipientID string, amount decimal.Decimal) (domain.User, domain.Transaction, error)
}

func (s ledgerRepoStub) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	if s.depositFn != nil {
		return s.depositFn(ctx, userID, amount)
	}
	return domain.User{}, domain.Transaction{}, nil
}

func (s ledgerRepoStub) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	if s.withdrawFn != nil {
		return s.withdrawFn(ctx, userID, amount)
	}
	return domain.User{}, domain.Transaction{}, nil
}

func (s ledgerRepoStub) Transfer(ctx context.Context, senderID string, recipientID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
	if s.transferFn != nil {
		return s.transferFn(ctx, senderID, recipientID, amount)
	}
	return domain.User{}, domain.Transaction{}, nil
}

type transactionRepoStub struct {
	listByUserIDFn func(ctx context.Context, userID string) ([]domain.Transaction, error)
}

func (s transactionRepoStub) ListByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if s.listByUserIDFn != nil {
		return s.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func TestTransactionServiceApplyDeposit(t *testing.T) {
	svc := services.NewTransactionService(ledgerRepoStub{
		depositFn: func(_ context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
			if !amount.Equal(decimal.NewFromInt(50)) {
				t.Fatalf("amount = %s, want 50", amount)
			}
			user := domain.User{ID: userID, Name: "Ada", Email: "ada@example.com", Balance: "150.00", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
			record := domain.Transaction{ID: "t-1", UserID: userID, Kind: domain.TransactionKindDeposit, Amount: "50.00", Balance: "150.00", CreatedAt: time.Now().UTC()}
			return user, record, nil
		},
	}, transactionRepoStub{})

	resp, err := svc.Apply(context.Background(), models.TransactionRequest{
		UserID: "u-1",
		Type:   "deposit",
		Amount: "50",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.User.Balance != "150.00" {
		t.Fatalf("user balance = %s, want 150.00", resp.User.Balance)
	}
	if resp.Transaction.Type != "deposit" || resp.Transaction.Balance != "150.00" {
		t.Fatalf("transaction = %+v", resp.Transaction)
	}
}

func TestTransactionServiceApplyWithdrawInsufficient(t *testing.T) {
	svc := services.NewTransactionService(ledgerRepoStub{
		withdrawFn: func(context.Context, string, decimal.Decimal) (domain.User, domain.Transaction, error) {
			return domain.User{}, domain.Transaction{}, domain.ErrInsufficientBalance
		},
	}, transactionRepoStub{})

	_, err := svc.Apply(context.Background(), models.TransactionRequest{
		UserID: "u-1",
		Type:   "withdraw",
		Amount: "200",
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestTransactionServiceApplyRejectsBadInput(t *testing.T) {
	svc := services.NewTransactionService(ledgerRepoStub{
		depositFn: func(context.Context, string, decimal.Decimal) (domain.User, domain.Transaction, error) {
			t.Fatal("ledger must not be touched for invalid input")
			return domain.User{}, domain.Transaction{}, nil
		},
	}, transactionRepoStub{})

	cases := []models.TransactionRequest{
		{UserID: "u-1", Type: "deposit", Amount: "0"},
		{UserID: "u-1", Type: "deposit", Amount: "-5"},
		{UserID: "u-1", Type: "deposit", Amount: "abc"},
		{UserID: "u-1", Type: "deposit", Amount: "0.001"},
		{UserID: "u-1", Type: "deposit", Amount: "10.005"},
		{UserID: "u-1", Type: "loan", Amount: "10"},
		{UserID: "", Type: "deposit", Amount: "10"},
	}
	for _, req := range cases {
		if _, err := svc.Apply(context.Background(), req); err == nil {
			t.Fatalf("expected validation error for %+v", req)
		}
	}
}

func TestTransactionServiceApplyAcceptsCentPrecision(t *testing.T) {
	svc := services.NewTransactionService(ledgerRepoStub{
		depositFn: func(_ context.Context, userID string, amount decimal.Decimal) (domain.User, domain.Transaction, error) {
			user := domain.User{ID: userID, Balance: amount.StringFixed(2), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
			record := domain.Transaction{ID: "t-1", UserID: userID, Kind: domain.TransactionKindDeposit, Amount: amount.StringFixed(2), Balance: user.Balance, CreatedAt: time.Now().UTC()}
			return user, record, nil
		},
	}, transactionRepoStub{})

	for _, amount := range []string{"0.01", "10.50", "10.5", "10"} {
		if _, err := svc.Apply(context.Background(), models.TransactionRequest{
			UserID: "u-1", Type: "deposit", Amount: json.Number(amount),
		}); err != nil {
			t.Fatalf("amount %s rejected: %v", amount, err)
		}
	}
}

// A deposit finer than one cent must be refused outright rather than
// rounded into a zero-amount ledger record.
func TestTransactionServiceRejectsSubCentDeposit(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewTransactionService(store, store)

	user, err := store.Create(context.Background(), domain.User{
		Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Balance: "10.00",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.Apply(context.Background(), models.TransactionRequest{
		UserID: user.ID, Type: "deposit", Amount: "0.001",
	}); err == nil {
		t.Fatal("expected validation error for sub-cent amount")
	}

	current, err := store.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Balance != "10.00" {
		t.Fatalf("balance = %s, want unchanged 10.00", current.Balance)
	}

	records, err := store.ListByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0 after rejected deposit", len(records))
	}
}

func TestTransactionServiceList(t *testing.T) {
	svc := services.NewTransactionService(ledgerRepoStub{}, transactionRepoStub{
		listByUserIDFn: func(_ context.Context, userID string) ([]domain.Transaction, error) {
			return []domain.Transaction{
				{ID: "t-2", UserID: userID, Kind: domain.TransactionKindWithdraw, Amount: "30.00", Balance: "45.00", CreatedAt: time.Now().UTC()},
				{ID: "t-1", UserID: userID, Kind: domain.TransactionKindDeposit, Amount: "75.00", Balance: "75.00", CreatedAt: time.Now().UTC().Add(-time.Minute)},
			}, nil
		},
	})

	resp, err := svc.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
	if resp[0].ID != "t-2" {
		t.Fatal("expected newest record first")
	}
}
