package postgres

import (
	"context"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a single transaction. The insert is its own unit of work.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	return r.queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:          txn.ID,
		UserID:      txn.UserID,
		TeamID:      txn.TeamID,
		Description: txn.Description,
		Amount:      decimalToNumeric(txn.Amount),
		Category:    txn.Category,
		Type:        string(txn.Type),
		Date:        timeToPgDate(txn.Date),
		CreatedAt:   timeToPgTimestamptz(txn.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(txn.UpdatedAt),
	})
}

// List returns personal transactions when filter.TeamID is nil, otherwise the team's.
func (r *TransactionRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	var (
		rows []generated.Transaction
		err  error
	)

	if filter.TeamID != nil {
		rows, err = r.queries.ListTeamTransactions(ctx, generated.ListTeamTransactionsParams{
			TeamID: *filter.TeamID,
			Month:  int32(filter.Month),
			Year:   int32(filter.Year),
			Limit:  int32(filter.Limit),
			Offset: int32(filter.Offset),
		})
	} else {
		rows, err = r.queries.ListPersonalTransactions(ctx, generated.ListPersonalTransactionsParams{
			UserID: filter.UserID,
			Month:  int32(filter.Month),
			Year:   int32(filter.Year),
			Limit:  int32(filter.Limit),
			Offset: int32(filter.Offset),
		})
	}
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.Transaction, len(rows))
	for i, row := range rows {
		txns[i] = rowToTransaction(row)
	}

	return txns, nil
}

// LockDeletable selects and locks the ids the user may delete.
func (r *TransactionRepository) LockDeletable(ctx context.Context, tx usecase.Tx, ids []string, userID string, teamIDs []string) ([]string, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	if teamIDs == nil {
		teamIDs = []string{}
	}

	return r.queries.WithTx(pgxTx).LockDeletableTransactions(ctx, generated.LockDeletableTransactionsParams{
		IDs:     ids,
		UserID:  userID,
		TeamIDs: teamIDs,
	})
}

// DeleteByIDs deletes the given transactions and returns how many rows went away.
func (r *TransactionRepository) DeleteByIDs(ctx context.Context, tx usecase.Tx, ids []string) (int64, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return 0, err
	}

	return r.queries.WithTx(pgxTx).DeleteTransactionsByIDs(ctx, ids)
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		TeamID:      row.TeamID,
		Description: row.Description,
		Amount:      numericToDecimal(row.Amount),
		Category:    row.Category,
		Type:        domain.TransactionType(row.Type),
		Date:        row.Date.Time,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

var _ usecase.TransactionRepository = (*TransactionRepository)(nil)
