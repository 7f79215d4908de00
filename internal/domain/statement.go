package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileFormat is the declared format of an uploaded statement.
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
	FormatXLS  FileFormat = "xls"
	FormatPDF  FileFormat = "pdf"
)

var supportedFormats = map[FileFormat]bool{
	FormatCSV:  true,
	FormatXLSX: true,
	FormatXLS:  true,
	FormatPDF:  true,
}

// ParseFileFormat derives the format from a file name's extension.
func ParseFileFormat(name string) (FileFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	f := FileFormat(ext)
	if !supportedFormats[f] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// IsSpreadsheet reports whether the format is a workbook.
func (f FileFormat) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// UploadedStatement is the catalog record of one uploaded source file.
type UploadedStatement struct {
	ID         string
	Name       string
	Path       string
	Size       int64
	UploadedBy string
	CreatedAt  time.Time
}

// Format returns the statement's format as declared by its original name.
func (s *UploadedStatement) Format() (FileFormat, error) {
	return ParseFileFormat(s.Name)
}
