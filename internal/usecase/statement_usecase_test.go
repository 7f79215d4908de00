package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
	"github.com/iho/fintrack/internal/usecase/mocks"
)

type statementDeps struct {
	statementRepo *mocks.MockStatementRepository
	teamRepo      *mocks.MockTeamRepository
	txnRepo       *mocks.MockTransactionRepository
	blobs         *mocks.MockBlobStore
	extractor     *mocks.MockExtractor
	classifier    *mocks.MockClassifier
	recorder      *mocks.MockPipelineRecorder
}

func newTestStatementUseCase(t *testing.T, maxBytes int64) (*usecase.StatementUseCase, statementDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	deps := statementDeps{
		statementRepo: mocks.NewMockStatementRepository(ctrl),
		teamRepo:      mocks.NewMockTeamRepository(ctrl),
		txnRepo:       mocks.NewMockTransactionRepository(ctrl),
		blobs:         mocks.NewMockBlobStore(ctrl),
		extractor:     mocks.NewMockExtractor(ctrl),
		classifier:    mocks.NewMockClassifier(ctrl),
		recorder:      mocks.NewMockPipelineRecorder(ctrl),
	}

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("id-1").AnyTimes()

	uc := usecase.NewStatementUseCase(usecase.StatementUseCaseConfig{
		StatementRepo: deps.statementRepo,
		TeamRepo:      deps.teamRepo,
		Blobs:         deps.blobs,
		Extractor:     deps.extractor,
		Classifier:    deps.classifier,
		Reconciler:    usecase.NewReconciler(deps.txnRepo, deps.teamRepo, idGen, zerolog.Nop()),
		IDGen:         idGen,
		Recorder:      deps.recorder,
		Logger:        zerolog.Nop(),
		MaxBytes:      maxBytes,
	})

	return uc, deps
}

func csvUpload(content string) usecase.ImportStatementInput {
	return usecase.ImportStatementInput{
		Content:  strings.NewReader(content),
		UserID:   "user-1",
		FileName: "march.csv",
		Size:     int64(len(content)),
	}
}

func TestStatementUseCase_ImportStatement(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	content := "Date,Description,Amount\n2024-03-01,Coffee,-3.50\n"

	deps.recorder.EXPECT().StatementUploaded(domain.FormatCSV)
	deps.blobs.EXPECT().Store(gomock.Any(), "march.csv", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, r io.Reader) (string, error) {
			data, _ := io.ReadAll(r)
			if string(data) != content {
				t.Errorf("stored content differs from upload")
			}
			return "bank_statements/abc.csv", nil
		})
	deps.statementRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s *domain.UploadedStatement) error {
			if s.Name != "march.csv" || s.Path != "bank_statements/abc.csv" || s.UploadedBy != "user-1" {
				t.Errorf("unexpected catalog record: %+v", s)
			}
			return nil
		})
	deps.extractor.EXPECT().Extract(gomock.Any(), "bank_statements/abc.csv", domain.FormatCSV).Return(content, nil)
	deps.classifier.EXPECT().Classify(gomock.Any(), content).
		Return("```json\n[{\"date\":\"2024-03-01\",\"description\":\"Coffee\",\"amount\":-3.5,\"category\":\"Food\",\"type\":\"Expense\"}]\n```", nil)
	deps.recorder.EXPECT().ClassificationObserved(gomock.Any(), nil)
	deps.txnRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.recorder.EXPECT().CandidatesReconciled(1, 0)

	result, err := uc.ImportStatement(context.Background(), csvUpload(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Statement.ID != "id-1" {
		t.Errorf("expected statement id-1, got %q", result.Statement.ID)
	}
	if len(result.Report.Persisted) != 1 {
		t.Errorf("expected 1 persisted transaction, got %d", len(result.Report.Persisted))
	}
	if result.Report.Persisted[0].Category != "Food" {
		t.Errorf("expected Food, got %q", result.Report.Persisted[0].Category)
	}
}

func TestStatementUseCase_ImportStatement_CallerCancellationDoesNotInterrupt(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	content := "Date,Description,Amount\n2024-03-01,Coffee,-3.50\n2024-03-02,Rent,-900\n2024-03-03,Salary,2500\n"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps.recorder.EXPECT().StatementUploaded(domain.FormatCSV)
	deps.blobs.EXPECT().Store(gomock.Any(), "march.csv", gomock.Any()).Return("bank_statements/abc.csv", nil)
	deps.statementRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.extractor.EXPECT().Extract(gomock.Any(), "bank_statements/abc.csv", domain.FormatCSV).Return(content, nil)
	deps.classifier.EXPECT().Classify(gomock.Any(), content).Return(`[
		{"date":"2024-03-01","description":"Coffee","amount":-3.5,"category":"Food","type":"Expense"},
		{"date":"2024-03-02","description":"Rent","amount":-900,"category":"Housing","type":"Expense"},
		{"date":"2024-03-03","description":"Salary","amount":2500,"category":"Salary","type":"Income"}
	]`, nil)
	deps.recorder.EXPECT().ClassificationObserved(gomock.Any(), nil)

	creates := 0
	deps.txnRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *domain.Transaction) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			creates++
			if creates == 1 {
				// The client disconnects mid-import.
				cancel()
			}
			return nil
		}).Times(3)
	deps.recorder.EXPECT().CandidatesReconciled(3, 0)

	result, err := uc.ImportStatement(ctx, csvUpload(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Report.Persisted) != 3 || len(result.Report.Failed) != 0 {
		t.Errorf("expected all 3 candidates persisted, got %d persisted and %d failures",
			len(result.Report.Persisted), len(result.Report.Failed))
	}
}

func TestStatementUseCase_ImportStatement_RejectsBeforeStoring(t *testing.T) {
	teamID := "team-2"

	tests := []struct {
		name    string
		input   usecase.ImportStatementInput
		setup   func(statementDeps)
		wantErr error
	}{
		{
			name:    "unsupported extension",
			input:   usecase.ImportStatementInput{Content: strings.NewReader("x"), UserID: "user-1", FileName: "notes.txt"},
			wantErr: domain.ErrUnsupportedFormat,
		},
		{
			name:    "declared size over limit",
			input:   usecase.ImportStatementInput{Content: strings.NewReader("x"), UserID: "user-1", FileName: "a.csv", Size: 65},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "content over limit",
			input:   usecase.ImportStatementInput{Content: strings.NewReader(strings.Repeat("a", 65)), UserID: "user-1", FileName: "a.csv"},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name:    "empty file",
			input:   usecase.ImportStatementInput{Content: strings.NewReader(""), UserID: "user-1", FileName: "a.pdf"},
			wantErr: domain.ErrEmptyFile,
		},
		{
			name:  "team not accessible",
			input: usecase.ImportStatementInput{Content: strings.NewReader("x"), UserID: "user-1", FileName: "a.xlsx", TeamID: &teamID},
			setup: func(d statementDeps) {
				d.teamRepo.EXPECT().IsMemberOrOwner(gomock.Any(), "user-1", "team-2").Return(false, nil)
			},
			wantErr: domain.ErrTeamAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, deps := newTestStatementUseCase(t, 64)
			if tt.setup != nil {
				tt.setup(deps)
			}

			_, err := uc.ImportStatement(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStatementUseCase_ImportStatement_ClassifierFailure(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	serviceErr := errors.Join(domain.ErrExternalServiceFailure, errors.New("status 503"))

	deps.recorder.EXPECT().StatementUploaded(domain.FormatPDF)
	deps.blobs.EXPECT().Store(gomock.Any(), "s.pdf", gomock.Any()).Return("bank_statements/s.pdf", nil)
	deps.statementRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.extractor.EXPECT().Extract(gomock.Any(), "bank_statements/s.pdf", domain.FormatPDF).Return("text", nil)
	deps.classifier.EXPECT().Classify(gomock.Any(), "text").Return("", serviceErr)
	deps.recorder.EXPECT().ClassificationObserved(gomock.Any(), serviceErr)
	deps.recorder.EXPECT().StageFailed(usecase.StageClassify)

	_, err := uc.ImportStatement(context.Background(), usecase.ImportStatementInput{
		Content:  strings.NewReader("%PDF-1.4"),
		UserID:   "user-1",
		FileName: "s.pdf",
	})
	if !errors.Is(err, domain.ErrExternalServiceFailure) {
		t.Fatalf("expected ErrExternalServiceFailure, got %v", err)
	}
}

func TestStatementUseCase_ImportStatement_MalformedOutput(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)

	deps.recorder.EXPECT().StatementUploaded(domain.FormatCSV)
	deps.blobs.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return("p", nil)
	deps.statementRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	deps.extractor.EXPECT().Extract(gomock.Any(), "p", domain.FormatCSV).Return("a,b", nil)
	deps.classifier.EXPECT().Classify(gomock.Any(), "a,b").Return("Sorry, I cannot help with that.", nil)
	deps.recorder.EXPECT().ClassificationObserved(gomock.Any(), nil)
	deps.recorder.EXPECT().StageFailed(usecase.StageNormalize)

	_, err := uc.ImportStatement(context.Background(), csvUpload("a,b"))
	if !errors.Is(err, domain.ErrMalformedClassifierOutput) {
		t.Fatalf("expected ErrMalformedClassifierOutput, got %v", err)
	}
}

func TestStatementUseCase_ImportStatement_CatalogFailureRemovesBlob(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	dbErr := errors.New("db down")

	deps.recorder.EXPECT().StatementUploaded(domain.FormatCSV)
	deps.blobs.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return("p", nil)
	deps.statementRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr)
	deps.recorder.EXPECT().StageFailed(usecase.StageStore)
	deps.blobs.EXPECT().Delete(gomock.Any(), "p").Return(nil)

	_, err := uc.ImportStatement(context.Background(), csvUpload("a,b"))
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestStatementUseCase_ListStatements_ClampsPage(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	deps.statementRepo.EXPECT().ListByUploader(gomock.Any(), "user-1", 100, 0).Return([]*domain.UploadedStatement{{ID: "s1"}}, nil)

	statements, err := uc.ListStatements(context.Background(), usecase.ListStatementsInput{UserID: "user-1", Limit: 500, Offset: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 1 {
		t.Errorf("expected 1 statement, got %d", len(statements))
	}
}

func TestStatementUseCase_DownloadStatement(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	deps.statementRepo.EXPECT().GetByID(gomock.Any(), "s1").Return(&domain.UploadedStatement{
		ID: "s1", Name: "march.xlsx", Path: "bank_statements/x.xlsx", UploadedBy: "user-1",
	}, nil)
	deps.blobs.EXPECT().Read(gomock.Any(), "bank_statements/x.xlsx").Return([]byte("PK"), nil)

	file, err := uc.DownloadStatement(context.Background(), "user-1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "march.xlsx" || string(file.Content) != "PK" {
		t.Errorf("unexpected file: %+v", file)
	}
}

func TestStatementUseCase_DownloadStatement_OtherUploader(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	deps.statementRepo.EXPECT().GetByID(gomock.Any(), "s1").Return(&domain.UploadedStatement{
		ID: "s1", Path: "p", UploadedBy: "user-2",
	}, nil)

	_, err := uc.DownloadStatement(context.Background(), "user-1", "s1")
	if !errors.Is(err, domain.ErrStatementNotFound) {
		t.Fatalf("expected ErrStatementNotFound, got %v", err)
	}
}

func TestStatementUseCase_DeleteStatement_MissingBlob(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	deps.statementRepo.EXPECT().GetByID(gomock.Any(), "s1").Return(&domain.UploadedStatement{
		ID: "s1", Path: "p", UploadedBy: "user-1",
	}, nil)
	deps.blobs.EXPECT().Delete(gomock.Any(), "p").Return(domain.ErrBlobNotFound)
	deps.statementRepo.EXPECT().Delete(gomock.Any(), "s1").Return(nil)

	if err := uc.DeleteStatement(context.Background(), "user-1", "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatementUseCase_DeleteStatement_BlobError(t *testing.T) {
	uc, deps := newTestStatementUseCase(t, 0)
	blobErr := errors.New("permission denied")
	deps.statementRepo.EXPECT().GetByID(gomock.Any(), "s1").Return(&domain.UploadedStatement{
		ID: "s1", Path: "p", UploadedBy: "user-1",
	}, nil)
	deps.blobs.EXPECT().Delete(gomock.Any(), "p").Return(blobErr)

	if err := uc.DeleteStatement(context.Background(), "user-1", "s1"); !errors.Is(err, blobErr) {
		t.Fatalf("expected blob error, got %v", err)
	}
}
