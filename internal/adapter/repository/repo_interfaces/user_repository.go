package repo_interfaces

import (
	"context"

	"github.com/api-sage/banking-ledger/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAccountNumberAndName(ctx context.Context, accountNumber string, name string) (domain.User, error)
	AssignAccountNumber(ctx context.Context, id string, accountNumber string) error
}
