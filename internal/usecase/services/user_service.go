package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const accountNumberAttempts = 5

type UserService struct {
	userRepo repo_interfaces.UserRepository
}

func NewUserService(userRepo repo_interfaces.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.MessageResponse, error) {
	logger.Info("user service sign up request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service sign up validation failed", err, nil)
		return models.MessageResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		logger.Info("user service sign up duplicate email", logger.Fields{
			"email": email,
		})
		return models.MessageResponse{}, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return models.MessageResponse{}, err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		logger.Error("user service sign up hash password failed", err, nil)
		return models.MessageResponse{}, err
	}

	user := domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      "0.00",
	}

	// The unique index still backs the pre-check when two sign-ups race.
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return models.MessageResponse{}, err
		}
		logger.Error("user service sign up repository failed", err, logger.Fields{
			"email": email,
		})
		return models.MessageResponse{}, err
	}

	logger.Info("user service sign up success", logger.Fields{
		"userId": created.ID,
		"email":  created.Email,
	})

	return models.MessageResponse{Message: "user registered successfully"}, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.UserResponse, error) {
	logger.Info("user service sign in request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service sign in validation failed", err, nil)
		return models.UserResponse{}, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Info("user service sign in unknown email", nil)
			return models.UserResponse{}, domain.ErrInvalidCredentials
		}
		logger.Error("user service sign in lookup failed", err, nil)
		return models.UserResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Info("user service sign in password mismatch", logger.Fields{
				"userId": user.ID,
			})
			return models.UserResponse{}, domain.ErrInvalidCredentials
		}
		return models.UserResponse{}, fmt.Errorf("compare password: %w", err)
	}

	logger.Info("user service sign in success", logger.Fields{
		"userId": user.ID,
	})

	return models.NewUserResponse(user), nil
}

func (s *UserService) GenerateAccountNumber(ctx context.Context, req models.GenerateAccountRequest) (models.GenerateAccountResponse, error) {
	logger.Info("user service generate account number request", logger.Fields{
		"userId": req.UserID,
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service generate account number validation failed", err, nil)
		return models.GenerateAccountResponse{}, err
	}

	userID := strings.TrimSpace(req.UserID)

	var err error
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		accountNumber := generateAccountNumber()
		err = s.userRepo.AssignAccountNumber(ctx, userID, accountNumber)
		if err == nil {
			logger.Info("user service generate account number success", logger.Fields{
				"userId":        userID,
				"accountNumber": accountNumber,
			})
			return models.GenerateAccountResponse{AccountNumber: accountNumber}, nil
		}
		if !isUniqueViolation(err) {
			break
		}
	}

	logger.Error("user service generate account number failed", err, logger.Fields{
		"userId": userID,
	})
	return models.GenerateAccountResponse{}, err
}

// generateAccountNumber draws a random 10-digit number, leading digit
// never zero. Collisions hit the unique index and are retried.
func generateAccountNumber() string {
	return fmt.Sprintf("%d", 1_000_000_000+rand.Int64N(9_000_000_000))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashed), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
