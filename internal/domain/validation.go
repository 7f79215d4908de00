package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation errors
var (
	ErrInvalidStatementName = errors.New("invalid statement file name")
	ErrInvalidIDFormat      = errors.New("invalid ID format")
	ErrInvalidFilter        = errors.New("invalid listing filter")
)

// Validation constants
const (
	MaxStatementNameLength = 255
	DefaultPageSize        = 20
	MaxPageSize            = 100
	MinFilterYear          = 1900
	MaxFilterYear          = 9999
)

var idRegex = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// ValidateStatementName validates the original name of an uploaded file.
func ValidateStatementName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidStatementName)
	}

	if len(name) > MaxStatementNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidStatementName, MaxStatementNameLength)
	}

	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: name must not contain path elements", ErrInvalidStatementName)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains control characters", ErrInvalidStatementName)
		}
	}

	return nil
}

// ValidateID validates a ULID identifier.
func ValidateID(id string) error {
	if !idRegex.MatchString(strings.ToUpper(id)) {
		return ErrInvalidIDFormat
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ValidatePeriod validates a month/year listing filter. Zero means unset.
func ValidatePeriod(month, year int) error {
	if month < 0 || month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidFilter, month)
	}

	if year != 0 && (year < MinFilterYear || year > MaxFilterYear) {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidFilter, year)
	}

	return nil
}
