// Package docstore persists the bookkeeping state as named JSON documents.
// The in-memory repository snapshots its four documents (transactions,
// customers, fuelStock, fuelPrices) here after every mutation; a failed
// snapshot is reported to the caller, who treats it as a warning.
package docstore

import "context"

// Document names written by the in-memory repository.
const (
	DocTransactions = "transactions"
	DocCustomers    = "customers"
	DocFuelStock    = "fuelStock"
	DocFuelPrices   = "fuelPrices"
)

type Store interface {
	// Load returns the raw document and whether it exists.
	Load(ctx context.Context, name string) ([]byte, bool, error)
	Save(ctx context.Context, name string, data []byte) error
}

// Noop discards saves and reports every document as absent. Used when no
// data directory is configured.
type Noop struct{}

func (Noop) Load(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Save(_ context.Context, _ string, _ []byte) error { return nil }
