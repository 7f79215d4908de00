package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionUseCase handles listing and removal of imported transactions.
type TransactionUseCase struct {
	txManager TxManager
	retrier   Retrier
	txnRepo   TransactionRepository
	teamRepo  TeamRepository
	logger    zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TxManager,
	retrier Retrier,
	txnRepo TransactionRepository,
	teamRepo TeamRepository,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager: txManager,
		retrier:   retrier,
		txnRepo:   txnRepo,
		teamRepo:  teamRepo,
		logger:    logger,
	}
}

// ListTransactionsInput represents input for listing transactions.
type ListTransactionsInput struct {
	TeamID *string
	UserID string
	Month  int
	Year   int
	Limit  int
	Offset int
}

// ListTransactions returns the personal or team transactions visible to the user.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	if err := domain.ValidatePeriod(input.Month, input.Year); err != nil {
		return nil, err
	}

	if err := authorizeTeam(ctx, uc.teamRepo, input.UserID, input.TeamID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.txnRepo.List(ctx, TransactionFilter{
		UserID: input.UserID,
		TeamID: input.TeamID,
		Month:  input.Month,
		Year:   input.Year,
		Limit:  limit,
		Offset: offset,
	})
}

// BulkDeleteInput represents input for deleting several transactions.
type BulkDeleteInput struct {
	UserID string
	IDs    []string
}

// BulkDeleteResult counts deleted and skipped transactions.
type BulkDeleteResult struct {
	SuccessCount int
	FailCount    int
}

// BulkDelete removes the given transactions that the user owns directly or
// through a team. Ids that are unknown or not accessible count as failures.
func (uc *TransactionUseCase) BulkDelete(ctx context.Context, input BulkDeleteInput) (*BulkDeleteResult, error) {
	ids := uniqueIDs(input.IDs)
	if len(ids) == 0 {
		return &BulkDeleteResult{}, nil
	}

	teamIDs, err := uc.teamRepo.ListAccessibleTeamIDs(ctx, input.UserID)
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to list accessible teams")
		return nil, domain.ErrBulkDeleteFailed
	}

	var deleted int64
	err = uc.retrier.Retry(ctx, func() error {
		n, err := uc.deleteInTx(ctx, ids, input.UserID, teamIDs)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		uc.logger.Error().Err(err).Strs("ids", ids).Msg("bulk delete failed")
		return nil, domain.ErrBulkDeleteFailed
	}

	return &BulkDeleteResult{
		SuccessCount: int(deleted),
		FailCount:    len(ids) - int(deleted),
	}, nil
}

func (uc *TransactionUseCase) deleteInTx(ctx context.Context, ids []string, userID string, teamIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	deletable, err := uc.txnRepo.LockDeletable(ctx, tx, ids, userID, teamIDs)
	if err != nil {
		return 0, err
	}

	var n int64
	if len(deletable) > 0 {
		n, err = uc.txnRepo.DeleteByIDs(ctx, tx, deletable)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return n, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
