package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/domain"
)

type TransactionService interface {
	Apply(ctx context.Context, req models.TransactionRequest) (models.ApplyTransactionResponse, error)
	List(ctx context.Context, userID string) ([]models.TransactionResponse, error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	applyHandler := http.HandlerFunc(c.apply)
	listHandler := http.HandlerFunc(c.list)
	if authMiddleware != nil {
		applyHandler = authMiddleware(applyHandler).ServeHTTP
		listHandler = authMiddleware(listHandler).ServeHTTP
	}

	mux.Handle("/api/transaction", http.HandlerFunc(applyHandler))
	mux.Handle("/api/transactions/{userId}", http.HandlerFunc(listHandler))
}

func (c *TransactionController) apply(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	var req models.TransactionRequest
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

	response, err := c.service.Apply(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrInsufficientBalance) {
			writeError(w, http.StatusBadRequest, err.Error())
			logResponse(r, http.StatusBadRequest, start)
			return
		}
		writeError(w, http.StatusInternalServerError, "Unable to process transaction right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, start)
}

func (c *TransactionController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	userID := strings.TrimSpace(r.PathValue("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	response, err := c.service.List(r.Context(), userID)
	if err != nil {
		logError(r, err, nil)
		writeError(w, http.StatusInternalServerError, "Unable to fetch transactions right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, start)
}
