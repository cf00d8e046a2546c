package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/domain"
)

type UserService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (models.MessageResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (models.UserResponse, error)
	GenerateAccountNumber(ctx context.Context, req models.GenerateAccountRequest) (models.GenerateAccountResponse, error)
}

type UserController struct {
	service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	signUpHandler := http.HandlerFunc(c.signUp)
	signInHandler := http.HandlerFunc(c.signIn)
	generateHandler := http.HandlerFunc(c.generateAccountNumber)
	if authMiddleware != nil {
		signUpHandler = authMiddleware(signUpHandler).ServeHTTP
		signInHandler = authMiddleware(signInHandler).ServeHTTP
		generateHandler = authMiddleware(generateHandler).ServeHTTP
	}

	mux.Handle("/api/signup", http.HandlerFunc(signUpHandler))
	mux.Handle("/api/signin", http.HandlerFunc(signInHandler))
	mux.Handle("/api/generate-account", http.HandlerFunc(generateHandler))
}

func (c *UserController) signUp(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, "invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, err.Error())
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	response, err := c.service.SignUp(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, domain.ErrDuplicateEmail.Error())
			logResponse(r, http.StatusBadRequest, start)
			return
		}
		writeError(w, http.StatusInternalServerError, "Unable to register right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, start)
}

func (c *UserController) signIn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, "invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, err.Error())
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	response, err := c.service.SignIn(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
			logResponse(r, http.StatusUnauthorized, start)
			return
		}
		writeError(w, http.StatusInternalServerError, "Unable to sign in right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, start)
}

func (c *UserController) generateAccountNumber(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	var req models.GenerateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, "invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusBadRequest, err.Error())
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	response, err := c.service.GenerateAccountNumber(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusInternalServerError, "Unable to generate account number right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, start)
}
