package ports

import (
	"context"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// LedgerStore is the durable storage collaborator the ledger is persisted
// through between calls. Save must replace the stored snapshot atomically.
type LedgerStore interface {
	// Load returns the persisted ledger, or (nil, nil) when no snapshot has
	// been written yet.
	Load(ctx context.Context) (*domain.Ledger, error)
	Save(ctx context.Context, ledger *domain.Ledger) error
}
