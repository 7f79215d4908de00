package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	queries *generated.Queries
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(db generated.DBTX) *StatementRepository {
	return &StatementRepository{queries: generated.New(db)}
}

// Create records an uploaded statement.
func (r *StatementRepository) Create(ctx context.Context, s *domain.UploadedStatement) error {
	return r.queries.CreateBankStatement(ctx, generated.CreateBankStatementParams{
		ID:         s.ID,
		Name:       s.Name,
		Path:       s.Path,
		Size:       s.Size,
		UploadedBy: s.UploadedBy,
		CreatedAt:  timeToPgTimestamptz(s.CreatedAt),
	})
}

// GetByID retrieves a statement by ID.
func (r *StatementRepository) GetByID(ctx context.Context, id string) (*domain.UploadedStatement, error) {
	row, err := r.queries.GetBankStatementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}

		return nil, err
	}

	return rowToStatement(row), nil
}

// ListByUploader lists a user's statements, newest first.
func (r *StatementRepository) ListByUploader(ctx context.Context, userID string, limit, offset int) ([]*domain.UploadedStatement, error) {
	rows, err := r.queries.ListBankStatementsByUploader(ctx, generated.ListBankStatementsByUploaderParams{
		UploadedBy: userID,
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		return nil, err
	}

	statements := make([]*domain.UploadedStatement, len(rows))
	for i, row := range rows {
		statements[i] = rowToStatement(row)
	}

	return statements, nil
}

// Delete removes a statement record.
func (r *StatementRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBankStatement(ctx, id)
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrStatementNotFound
	}

	return nil
}

func rowToStatement(row generated.BankStatement) *domain.UploadedStatement {
	return &domain.UploadedStatement{
		ID:         row.ID,
		Name:       row.Name,
		Path:       row.Path,
		Size:       row.Size,
		UploadedBy: row.UploadedBy,
		CreatedAt:  row.CreatedAt.Time,
	}
}

var _ usecase.StatementRepository = (*StatementRepository)(nil)
