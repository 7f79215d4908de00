package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

type transactionServiceStub struct {
	listFn       func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	bulkDeleteFn func(ctx context.Context, input usecase.BulkDeleteInput) (*usecase.BulkDeleteResult, error)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func (s *transactionServiceStub) BulkDelete(ctx context.Context, input usecase.BulkDeleteInput) (*usecase.BulkDeleteResult, error) {
	return s.bulkDeleteFn(ctx, input)
}

func TestTransactionHandler_List(t *testing.T) {
	var captured usecase.ListTransactionsInput
	teamID := "team-1"

	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{{
				ID:     "t1",
				UserID: "user-1",
				TeamID: &teamID,
				Amount: decimal.RequireFromString("-42.10"),
				Type:   domain.TransactionTypeExpense,
				Date:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/transactions?team_id=team-1&month=3&year=2024&limit=10", nil), "user-1")
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.TeamID == nil || *captured.TeamID != "team-1" {
		t.Fatalf("expected team filter, got %v", captured.TeamID)
	}
	if captured.Month != 3 || captured.Year != 2024 || captured.Limit != 10 || captured.UserID != "user-1" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Date != "2024-03-05" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.Transactions[0].Amount.Equal(decimal.RequireFromString("-42.10")) {
		t.Fatalf("unexpected amount %s", resp.Transactions[0].Amount)
	}
}

func TestTransactionHandler_List_Personal(t *testing.T) {
	var captured usecase.ListTransactionsInput
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.TeamID != nil {
		t.Fatalf("expected personal listing, got team %s", *captured.TeamID)
	}
}

func TestTransactionHandler_List_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"foreign team", domain.ErrTeamAccessDenied, http.StatusForbidden},
		{"bad period", domain.ErrInvalidFilter, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
					return nil, tt.err
				},
			})

			rec := httptest.NewRecorder()
			handler.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/transactions?month=13", nil), "user-1"))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestTransactionHandler_BulkDelete(t *testing.T) {
	var captured usecase.BulkDeleteInput
	handler := NewTransactionHandler(&transactionServiceStub{
		bulkDeleteFn: func(ctx context.Context, input usecase.BulkDeleteInput) (*usecase.BulkDeleteResult, error) {
			captured = input
			return &usecase.BulkDeleteResult{SuccessCount: 2, FailCount: 1}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/bulk-delete", strings.NewReader(`{"ids":["a","b","c"]}`))
	rec := httptest.NewRecorder()
	handler.BulkDelete(rec, withUser(req, "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserID != "user-1" || len(captured.IDs) != 3 {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.BulkDeleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SuccessCount != 2 || resp.FailCount != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_BulkDelete_InvalidBody(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/bulk-delete", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler.BulkDelete(rec, withUser(req, "user-1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_BulkDelete_Failure(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		bulkDeleteFn: func(ctx context.Context, input usecase.BulkDeleteInput) (*usecase.BulkDeleteResult, error) {
			return nil, domain.ErrBulkDeleteFailed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/bulk-delete", strings.NewReader(`{"ids":["a"]}`))
	rec := httptest.NewRecorder()
	handler.BulkDelete(rec, withUser(req, "user-1"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
