package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	BulkDelete(ctx context.Context, input usecase.BulkDeleteInput) (*usecase.BulkDeleteResult, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// List lists personal transactions, or a team's when team_id is given.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	txns, err := h.transactionUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		TeamID: optionalString(r.URL.Query().Get("team_id")),
		UserID: user.ID,
		Month:  parseIntQuery(r, "month", 0),
		Year:   parseIntQuery(r, "year", 0),
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Total:        int64(len(txns)),
	})
}

// BulkDelete deletes the listed transactions the user may access.
func (h *TransactionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transactionUC.BulkDelete(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeDomainError(w, "failed to delete transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BulkDeleteResponse{
		SuccessCount: result.SuccessCount,
		FailCount:    result.FailCount,
	})
}
