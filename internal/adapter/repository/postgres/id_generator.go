package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator implements usecase.IDGenerator.
// IDs made in the same process sort in creation order, which keeps the
// ledger tie-break stable for entries created in the same millisecond.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new monotonic ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
