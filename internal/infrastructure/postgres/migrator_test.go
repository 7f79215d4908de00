package postgres

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunMigrationsMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	if err := RunMigrations("postgres://localhost:1/db?sslmode=disable", missing, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}

func TestRunMigrationsDownMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	if err := RunMigrationsDown("postgres://localhost:1/db?sslmode=disable", missing, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}
