package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// BallotMarker provides the fast-path double-vote check backed by Redis.
// Key format: ballot:<voter>:<proposal_id>
//
// Marks never expire: a (voter, proposal) pair votes at most once, ever. The
// ledger's seen-set stays authoritative; this store only short-circuits
// replays before the ledger is consulted.
type BallotMarker struct {
	client *redis.Client
}

// NewBallotMarker creates a BallotMarker wrapping the given Redis client.
func NewBallotMarker(client *redis.Client) *BallotMarker {
	return &BallotMarker{client: client}
}

// IsMarked reports whether this (voter, proposal) pair has already voted.
func (b *BallotMarker) IsMarked(ctx context.Context, voter domain.Identity, proposalID uint64) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(voter, proposalID)).Result()
	if err != nil {
		return false, fmt.Errorf("ballot check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this pair has voted.
func (b *BallotMarker) Mark(ctx context.Context, voter domain.Identity, proposalID uint64) error {
	return b.client.Set(ctx, b.key(voter, proposalID), "1", 0).Err()
}

func (b *BallotMarker) key(voter domain.Identity, proposalID uint64) string {
	return fmt.Sprintf("ballot:%s:%d", voter, proposalID)
}
