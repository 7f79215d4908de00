package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// Reconciler turns classifier candidates into persisted transactions.
type Reconciler struct {
	txnRepo  TransactionRepository
	teamRepo TeamRepository
	idGen    IDGenerator
	logger   zerolog.Logger
	now      func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(txnRepo TransactionRepository, teamRepo TeamRepository, idGen IDGenerator, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		txnRepo:  txnRepo,
		teamRepo: teamRepo,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

// ReconcileInput represents input for reconciling a classification result.
type ReconcileInput struct {
	Result domain.ClassificationResult
	UserID string
	TeamID *string
}

// FailedCandidate is a candidate that could not be imported.
type FailedCandidate struct {
	Index     int
	Candidate any
	Reason    error
}

// ImportReport lists what happened to each candidate, in input order.
type ImportReport struct {
	Persisted []*domain.Transaction
	Failed    []FailedCandidate
}

// Reconcile persists every valid candidate independently. Shape and team
// access failures abort the batch before anything is written; a failure on
// one candidate is recorded in the report and processing continues.
func (r *Reconciler) Reconcile(ctx context.Context, input ReconcileInput) (*ImportReport, error) {
	candidates, ok := input.Result.Transactions()
	if !ok {
		payload, _ := json.Marshal(input.Result.Envelope())
		r.logger.Error().
			RawJSON("analysis", payload).
			Msg("invalid analysis format received from classifier")
		return nil, domain.ErrInvalidClassificationShape
	}

	if err := authorizeTeam(ctx, r.teamRepo, input.UserID, input.TeamID); err != nil {
		return nil, err
	}

	today := r.now().UTC().Truncate(24 * time.Hour)
	report := &ImportReport{
		Persisted: make([]*domain.Transaction, 0, len(candidates)),
	}

	for i, raw := range candidates {
		txn, err := r.persistCandidate(ctx, raw, input.UserID, input.TeamID, today)
		if err != nil {
			r.logger.Error().
				Err(err).
				Int("index", i).
				Interface("candidate", raw).
				Msg("error saving transaction")
			report.Failed = append(report.Failed, FailedCandidate{Index: i, Candidate: raw, Reason: err})
			continue
		}
		report.Persisted = append(report.Persisted, txn)
	}

	return report, nil
}

func (r *Reconciler) persistCandidate(ctx context.Context, raw any, userID string, teamID *string, today time.Time) (*domain.Transaction, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", domain.ErrInvalidCandidate, raw)
	}

	txn, err := buildTransaction(domain.Candidate(fields), today)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	txn.ID = r.idGen.Generate()
	txn.UserID = userID
	txn.TeamID = teamID
	txn.CreatedAt = now
	txn.UpdatedAt = now

	if err := r.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	return txn, nil
}

// buildTransaction applies per-field defaults to a candidate.
func buildTransaction(c domain.Candidate, today time.Time) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		Date:        today,
		Description: DescriptionPlaceholder,
		Amount:      decimal.Zero,
		Category:    domain.CategoryUncategorized,
		Type:        domain.TransactionTypeExpense,
	}

	if s, ok := c.String(domain.FieldDate); ok && s != "" {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", domain.ErrInvalidCandidate, s)
		}
		txn.Date = d
	}

	if s, ok := c.String(domain.FieldDescription); ok && s != "" {
		txn.Description = s
	}

	amount, err := coerceAmount(c[domain.FieldAmount])
	if err != nil {
		return nil, err
	}
	// Amounts are stored with two decimal places.
	txn.Amount = amount.Round(2)

	if s, ok := c.String(domain.FieldCategory); ok {
		txn.Category = domain.NormalizeCategory(s)
	}

	if s, ok := c.String(domain.FieldType); ok && s != "" {
		t, known := domain.ParseTransactionType(s)
		if !known {
			return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidCandidate, s)
		}
		txn.Type = t
	}

	return txn, nil
}

// coerceAmount accepts JSON numbers and numeric strings. Missing values are zero.
func coerceAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		d, err := decimal.NewFromString(a.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: amount %q: %v", domain.ErrInvalidCandidate, a, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(a), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: amount %q is not numeric", domain.ErrInvalidCandidate, a)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: amount has type %T", domain.ErrInvalidCandidate, v)
	}
}

// authorizeTeam checks that userID may act on teamID. A nil team is the
// personal scope and always allowed.
func authorizeTeam(ctx context.Context, teamRepo TeamRepository, userID string, teamID *string) error {
	if teamID == nil {
		return nil
	}

	ok, err := teamRepo.IsMemberOrOwner(ctx, userID, *teamID)
	if err != nil {
		return fmt.Errorf("check team access: %w", err)
	}
	if !ok {
		return domain.ErrTeamAccessDenied
	}

	return nil
}
