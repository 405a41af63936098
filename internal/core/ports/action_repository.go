package ports

import (
	"context"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// ActionFilter carries the query parameters for listing governance actions.
type ActionFilter struct {
	Kind  string          // optional: filter by action kind
	Actor domain.Identity // optional: filter by acting identity
	Page  int             // 1-based
	Limit int             // capped by the handler
}

// ActionRepository persists the append-only governance log. Append never
// updates or deletes existing records.
type ActionRepository interface {
	Append(ctx context.Context, action *domain.Action) error
	// List returns a page of actions in insertion order and the total count.
	List(ctx context.Context, filter ActionFilter) ([]domain.Action, int64, error)
}
