package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iho/fintrack/internal/domain"
)

func TestULIDGeneratorProducesValidIDs(t *testing.T) {
	gen := NewULIDGenerator()

	a, b := gen.Generate(), gen.Generate()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if err := domain.ValidateID(a); err != nil {
		t.Fatalf("generated id %q is not a ULID: %v", a, err)
	}
}

func TestULIDGeneratorOrdersBatchWithinOneMillisecond(t *testing.T) {
	importedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	gen := &ULIDGenerator{now: func() time.Time { return importedAt }}

	prev := ""
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if id <= prev {
			t.Fatalf("id %d (%s) does not sort after %s", i, id, prev)
		}
		prev = id

		parsed, err := ulid.Parse(id)
		if err != nil {
			t.Fatalf("parse %q: %v", id, err)
		}
		if got := ulid.Time(parsed.Time()); !got.Equal(importedAt) {
			t.Fatalf("expected id timestamp %s, got %s", importedAt, got)
		}
	}
}
