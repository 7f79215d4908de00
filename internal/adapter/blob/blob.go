// Package blob stores uploaded statement files.
package blob

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// KeyPrefix is the directory all statement blobs are written under.
const KeyPrefix = "bank_statements"

// NewKey returns a fresh object key that keeps the extension of name.
func NewKey(name string) string {
	return path.Join(KeyPrefix, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
}
