// Package extractor converts stored statements into plain text for the classifier.
package extractor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TextReader turns the raw bytes of one file format into text.
type TextReader func(content []byte) (string, error)

// Extractor reads statements from a blob store and dispatches on format.
type Extractor struct {
	blobs   usecase.BlobStore
	readers map[domain.FileFormat]TextReader
	logger  zerolog.Logger
}

// New creates an Extractor with readers for every supported format.
func New(blobs usecase.BlobStore, logger zerolog.Logger) *Extractor {
	return &Extractor{
		blobs: blobs,
		readers: map[domain.FileFormat]TextReader{
			domain.FormatCSV:  ReadCSV,
			domain.FormatXLSX: ReadXLSX,
			domain.FormatXLS:  ReadXLS,
			domain.FormatPDF:  ReadPDF,
		},
		logger: logger,
	}
}

// Extract returns the text content of the statement stored at path.
func (e *Extractor) Extract(ctx context.Context, path string, format domain.FileFormat) (string, error) {
	read, ok := e.readers[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	content, err := e.blobs.Read(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read statement %s: %w", path, err)
	}

	text, err := read(content)
	if err != nil {
		e.logger.Error().Err(err).Str("path", path).Str("format", string(format)).Msg("failed to extract statement text")
		return "", fmt.Errorf("extract %s: %w", format, err)
	}

	e.logger.Debug().
		Str("path", path).
		Str("format", string(format)).
		Int("bytes", len(text)).
		Msg("statement text extracted")

	return text, nil
}

var _ usecase.Extractor = (*Extractor)(nil)
