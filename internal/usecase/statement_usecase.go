package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
)

// StatementUseCase runs the statement ingestion pipeline and manages the
// upload catalog.
type StatementUseCase struct {
	statementRepo StatementRepository
	teamRepo      TeamRepository
	blobs         BlobStore
	extractor     Extractor
	classifier    Classifier
	reconciler    *Reconciler
	idGen         IDGenerator
	recorder      PipelineRecorder
	logger        zerolog.Logger
	maxBytes      int64
}

// StatementUseCaseConfig wires a StatementUseCase.
type StatementUseCaseConfig struct {
	StatementRepo StatementRepository
	TeamRepo      TeamRepository
	Blobs         BlobStore
	Extractor     Extractor
	Classifier    Classifier
	Reconciler    *Reconciler
	IDGen         IDGenerator
	// Recorder is optional.
	Recorder PipelineRecorder
	Logger   zerolog.Logger
	// MaxBytes defaults to DefaultMaxUploadBytes.
	MaxBytes int64
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(cfg StatementUseCaseConfig) *StatementUseCase {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	return &StatementUseCase{
		statementRepo: cfg.StatementRepo,
		teamRepo:      cfg.TeamRepo,
		blobs:         cfg.Blobs,
		extractor:     cfg.Extractor,
		classifier:    cfg.Classifier,
		reconciler:    cfg.Reconciler,
		idGen:         cfg.IDGen,
		recorder:      recorder,
		logger:        cfg.Logger,
		maxBytes:      maxBytes,
	}
}

// ImportStatementInput represents an uploaded statement file.
type ImportStatementInput struct {
	Content  io.Reader
	TeamID   *string
	UserID   string
	FileName string
	// Size is the declared size in bytes. Zero means unknown; the content is
	// then measured while it is buffered.
	Size int64
}

// ImportStatementResult is the outcome of a successful import.
type ImportStatementResult struct {
	Statement *domain.UploadedStatement
	Report    *ImportReport
}

// ImportStatement stores the upload, records it in the catalog, extracts its
// text, classifies it and persists the resulting transactions.
func (uc *StatementUseCase) ImportStatement(ctx context.Context, input ImportStatementInput) (*ImportStatementResult, error) {
	// 1. Validate before anything is stored
	if err := domain.ValidateStatementName(input.FileName); err != nil {
		return nil, err
	}

	format, err := domain.ParseFileFormat(input.FileName)
	if err != nil {
		return nil, err
	}

	if input.Size > uc.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	content, err := io.ReadAll(io.LimitReader(input.Content, uc.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > uc.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(content) == 0 {
		return nil, domain.ErrEmptyFile
	}

	if err := authorizeTeam(ctx, uc.teamRepo, input.UserID, input.TeamID); err != nil {
		return nil, err
	}

	uc.recorder.StatementUploaded(format)

	// Once accepted, an upload runs to completion or failure even if the
	// caller goes away. The classifier carries its own timeout.
	ctx = context.WithoutCancel(ctx)

	// 2. Store the blob and record it in the catalog
	path, err := uc.blobs.Store(ctx, input.FileName, bytes.NewReader(content))
	if err != nil {
		uc.recorder.StageFailed(StageStore)
		return nil, fmt.Errorf("store statement: %w", err)
	}

	statement := &domain.UploadedStatement{
		ID:         uc.idGen.Generate(),
		Name:       input.FileName,
		Path:       path,
		Size:       int64(len(content)),
		UploadedBy: input.UserID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.statementRepo.Create(ctx, statement); err != nil {
		uc.recorder.StageFailed(StageStore)
		if delErr := uc.blobs.Delete(ctx, path); delErr != nil {
			uc.logger.Warn().Err(delErr).Str("path", path).Msg("failed to remove orphaned statement blob")
		}
		return nil, fmt.Errorf("record statement: %w", err)
	}

	// 3. Extract text
	text, err := uc.extractor.Extract(ctx, path, format)
	if err != nil {
		uc.recorder.StageFailed(StageExtract)
		return nil, err
	}

	// 4. Classify
	started := time.Now()
	raw, err := uc.classifier.Classify(ctx, text)
	uc.recorder.ClassificationObserved(time.Since(started), err)
	if err != nil {
		uc.recorder.StageFailed(StageClassify)
		uc.logger.Error().Err(err).Str("statement_id", statement.ID).Msg("classifier request failed")
		return nil, err
	}

	uc.logger.Debug().
		Str("statement_id", statement.ID).
		Str("response", raw).
		Msg("classifier response")

	// 5. Normalize
	result, err := NormalizeClassifierOutput(raw)
	if err != nil {
		uc.recorder.StageFailed(StageNormalize)
		var malformed *domain.MalformedOutputError
		if errors.As(err, &malformed) {
			uc.logger.Error().
				Err(malformed.Err).
				Str("statement_id", statement.ID).
				Str("raw", malformed.Raw).
				Msg("failed to decode classifier response")
		}
		return nil, err
	}

	// 6. Reconcile
	report, err := uc.reconciler.Reconcile(ctx, ReconcileInput{
		Result: result,
		UserID: input.UserID,
		TeamID: input.TeamID,
	})
	if err != nil {
		uc.recorder.StageFailed(StageReconcile)
		return nil, err
	}

	uc.recorder.CandidatesReconciled(len(report.Persisted), len(report.Failed))

	uc.logger.Info().
		Str("statement_id", statement.ID).
		Str("format", string(format)).
		Int("persisted", len(report.Persisted)).
		Int("failed", len(report.Failed)).
		Msg("statement imported")

	return &ImportStatementResult{Statement: statement, Report: report}, nil
}

// ListStatementsInput represents input for listing a user's uploads.
type ListStatementsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListStatements returns the statements uploaded by the user, newest first.
func (uc *StatementUseCase) ListStatements(ctx context.Context, input ListStatementsInput) ([]*domain.UploadedStatement, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.statementRepo.ListByUploader(ctx, input.UserID, limit, offset)
}

// StatementFile is a downloaded statement.
type StatementFile struct {
	Name    string
	Content []byte
}

// DownloadStatement returns the stored file of a statement the user uploaded.
func (uc *StatementUseCase) DownloadStatement(ctx context.Context, userID, id string) (*StatementFile, error) {
	statement, err := uc.ownedStatement(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	content, err := uc.blobs.Read(ctx, statement.Path)
	if err != nil {
		return nil, err
	}

	return &StatementFile{Name: statement.Name, Content: content}, nil
}

// DeleteStatement removes a statement's blob and its catalog record. A blob
// that is already gone does not prevent removing the record.
func (uc *StatementUseCase) DeleteStatement(ctx context.Context, userID, id string) error {
	statement, err := uc.ownedStatement(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := uc.blobs.Delete(ctx, statement.Path); err != nil {
		if !errors.Is(err, domain.ErrBlobNotFound) {
			return err
		}
		uc.logger.Warn().Str("statement_id", id).Str("path", statement.Path).Msg("statement blob already missing")
	}

	return uc.statementRepo.Delete(ctx, id)
}

func (uc *StatementUseCase) ownedStatement(ctx context.Context, userID, id string) (*domain.UploadedStatement, error) {
	statement, err := uc.statementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if statement.UploadedBy != userID {
		return nil, domain.ErrStatementNotFound
	}

	return statement, nil
}
