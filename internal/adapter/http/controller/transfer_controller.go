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

type TransferService interface {
	Transfer(ctx context.Context, req models.TransferRequest) (models.TransferResponse, error)
}

type TransferController struct {
	service TransferService
}

func NewTransferController(service TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.transfer)
	if authMiddleware != nil {
		handler = authMiddleware(handler).ServeHTTP
	}

	mux.Handle("/api/transfer", http.HandlerFunc(handler))
}

func (c *TransferController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logResponse(r, http.StatusMethodNotAllowed, start)
		return
	}

	var req models.TransferRequest
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

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		if errors.Is(err, domain.ErrInvalidCounterparty) || errors.Is(err, domain.ErrInsufficientBalance) {
			writeError(w, http.StatusBadRequest, err.Error())
			logResponse(r, http.StatusBadRequest, start)
			return
		}
		writeError(w, http.StatusInternalServerError, "Unable to process transfer right now")
		logResponse(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, start)
}
