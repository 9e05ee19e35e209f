package store

import "github.com/google/uuid"

// IDGenerator hands out batch and run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator is the production IDGenerator. Its IDs sort by creation
// time, which keeps ledger rows roughly in insertion order by primary key.
type UUIDv7Generator struct{}

// Generate panics only if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
