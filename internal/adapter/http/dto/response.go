package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TeamID      *string         `json:"team_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		TeamID:      t.TeamID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Type:        string(t.Type),
		Date:        t.DateString(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// StatementResponse represents an uploaded statement in API responses.
type StatementResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatementFromDomain converts domain statement to response.
func StatementFromDomain(s *domain.UploadedStatement) *StatementResponse {
	return &StatementResponse{
		ID:         s.ID,
		Name:       s.Name,
		Path:       s.Path,
		Size:       s.Size,
		UploadedBy: s.UploadedBy,
		CreatedAt:  s.CreatedAt,
	}
}

// StatementsFromDomain converts domain statements to responses.
func StatementsFromDomain(statements []*domain.UploadedStatement) []*StatementResponse {
	result := make([]*StatementResponse, len(statements))
	for i, s := range statements {
		result[i] = StatementFromDomain(s)
	}
	return result
}

// ListStatementsResponse represents a page of uploaded statements.
type ListStatementsResponse struct {
	Statements []*StatementResponse `json:"statements"`
	Total      int64                `json:"total"`
}

// FailedCandidateResponse describes a classified record that was not imported.
type FailedCandidateResponse struct {
	Index     int    `json:"index"`
	Candidate any    `json:"candidate"`
	Reason    string `json:"reason"`
}

// ImportResponse is returned by a successful statement upload.
type ImportResponse struct {
	Statement    *StatementResponse         `json:"statement"`
	Transactions []*TransactionResponse     `json:"transactions"`
	Failed       []*FailedCandidateResponse `json:"failed"`
}

// ImportFromResult converts an import result to response.
func ImportFromResult(result *usecase.ImportStatementResult) *ImportResponse {
	failed := make([]*FailedCandidateResponse, len(result.Report.Failed))
	for i, f := range result.Report.Failed {
		failed[i] = &FailedCandidateResponse{
			Index:     f.Index,
			Candidate: f.Candidate,
			Reason:    f.Reason.Error(),
		}
	}

	return &ImportResponse{
		Statement:    StatementFromDomain(result.Statement),
		Transactions: TransactionsFromDomain(result.Report.Persisted),
		Failed:       failed,
	}
}

// BulkDeleteResponse reports the outcome of a bulk deletion.
type BulkDeleteResponse struct {
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
