package postgres

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues the ids of transactions and uploaded statements.
// ULIDs sort by creation time, so rows sharing a date keep their import
// order under the "date DESC, id DESC" listing.
type ULIDGenerator struct {
	now func() time.Time
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{now: time.Now}
}

// Generate returns a new id. Ids generated within the same millisecond are
// still strictly increasing.
func (g *ULIDGenerator) Generate() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), ulid.DefaultEntropy()).String()
}
