package usecase

import (
	"context"
	"io"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	// Create persists a single transaction in its own unit of work.
	Create(ctx context.Context, txn *domain.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	// LockDeletable returns the subset of ids owned by userID directly or through
	// one of teamIDs, locking those rows for the rest of tx.
	LockDeletable(ctx context.Context, tx Tx, ids []string, userID string, teamIDs []string) ([]string, error)
	DeleteByIDs(ctx context.Context, tx Tx, ids []string) (int64, error)
}

// TransactionFilter narrows a transaction listing. A nil TeamID lists the
// user's personal transactions.
type TransactionFilter struct {
	UserID string
	TeamID *string
	Month  int
	Year   int
	Limit  int
	Offset int
}

// StatementRepository defines data access for the upload catalog.
type StatementRepository interface {
	Create(ctx context.Context, statement *domain.UploadedStatement) error
	GetByID(ctx context.Context, id string) (*domain.UploadedStatement, error)
	ListByUploader(ctx context.Context, userID string, limit, offset int) ([]*domain.UploadedStatement, error)
	Delete(ctx context.Context, id string) error
}

// TeamRepository answers team membership questions.
type TeamRepository interface {
	IsMemberOrOwner(ctx context.Context, userID, teamID string) (bool, error)
	ListAccessibleTeamIDs(ctx context.Context, userID string) ([]string, error)
}

// BlobStore stores uploaded files by path.
type BlobStore interface {
	// Store writes content under a fresh path derived from name and returns the path.
	Store(ctx context.Context, name string, content io.Reader) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	// Delete removes the blob. Deleting a missing blob returns domain.ErrBlobNotFound.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Extractor converts a stored statement into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string, format domain.FileFormat) (string, error)
}

// Classifier sends statement text to the external model and returns its raw reply.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles database transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Retrier re-runs an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyPending is the value held under a claimed idempotency key
// until the request that claimed it finishes.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}

// PipelineRecorder receives ingestion pipeline measurements.
type PipelineRecorder interface {
	StatementUploaded(format domain.FileFormat)
	ClassificationObserved(duration time.Duration, err error)
	StageFailed(stage string)
	CandidatesReconciled(persisted, failed int)
}

type nopRecorder struct{}

func (nopRecorder) StatementUploaded(domain.FileFormat)         {}
func (nopRecorder) ClassificationObserved(time.Duration, error) {}
func (nopRecorder) StageFailed(string)                          {}
func (nopRecorder) CandidatesReconciled(int, int)               {}
