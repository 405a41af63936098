package ports

import (
	"context"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// Transferor is the external monetary transfer primitive. Transfer moves
// amount to the beneficiary identity and reports success or failure
// synchronously; a nil return means the funds have moved.
type Transferor interface {
	Transfer(ctx context.Context, to domain.Identity, amount int64) error
}
