package dto

import (
	"github.com/iho/fintrack/internal/usecase"
)

// BulkDeleteRequest represents a request to delete several transactions.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// ToUseCaseInput converts to use case input.
func (r *BulkDeleteRequest) ToUseCaseInput(userID string) usecase.BulkDeleteInput {
	return usecase.BulkDeleteInput{
		UserID: userID,
		IDs:    r.IDs,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
