package handler

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// Multipart field names of the upload form.
const (
	StatementFileField = "bankStatement"
	TeamIDField        = "teamId"
)

// multipartOverhead is allowed on top of the file limit for form boundaries and fields.
const multipartOverhead = 1 << 20

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	ImportStatement(ctx context.Context, input usecase.ImportStatementInput) (*usecase.ImportStatementResult, error)
	ListStatements(ctx context.Context, input usecase.ListStatementsInput) ([]*domain.UploadedStatement, error)
	DownloadStatement(ctx context.Context, userID, id string) (*usecase.StatementFile, error)
	DeleteStatement(ctx context.Context, userID, id string) error
}

// StatementHandler handles statement upload and catalog requests.
type StatementHandler struct {
	statementUC StatementService
	maxBytes    int64
	logger      zerolog.Logger
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService, maxBytes int64, logger zerolog.Logger) *StatementHandler {
	if maxBytes <= 0 {
		maxBytes = usecase.DefaultMaxUploadBytes
	}
	return &StatementHandler{statementUC: statementUC, maxBytes: maxBytes, logger: logger}
}

// Upload imports a statement sent as multipart form data.
func (h *StatementHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDomainError(w, "statement rejected", domain.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(StatementFileField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing statement file", fmt.Sprintf("form field %q is required", StatementFileField))
		return
	}
	defer file.Close()

	result, err := h.statementUC.ImportStatement(r.Context(), usecase.ImportStatementInput{
		Content:  file,
		TeamID:   optionalString(r.FormValue(TeamIDField)),
		UserID:   user.ID,
		FileName: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("file", header.Filename).Str("user_id", user.ID).Msg("statement import failed")
		writeDomainError(w, "failed to import statement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportFromResult(result))
}

// List lists the statements uploaded by the acting user.
func (h *StatementHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	statements, err := h.statementUC.ListStatements(r.Context(), usecase.ListStatementsInput{
		UserID: user.ID,
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list statements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListStatementsResponse{
		Statements: dto.StatementsFromDomain(statements),
		Total:      int64(len(statements)),
	})
}

// Download streams the stored statement file.
func (h *StatementHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := domain.ValidateID(id); err != nil {
		writeDomainError(w, "invalid statement ID", err)
		return
	}

	file, err := h.statementUC.DownloadStatement(r.Context(), user.ID, id)
	if err != nil {
		writeDomainError(w, "failed to download statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Content)
}

// Delete removes a statement and its stored file.
func (h *StatementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := domain.ValidateID(id); err != nil {
		writeDomainError(w, "invalid statement ID", err)
		return
	}

	if err := h.statementUC.DeleteStatement(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, "failed to delete statement", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
