package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/commonfund/treasury-api/internal/api/metrics"
	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// ActionSink receives governance log records after an operation commits.
// Implementations persist asynchronously and must never fail the operation.
type ActionSink interface {
	Record(action domain.Action)
}

// BallotMarker abstracts the fast-path double-vote store (Redis). It is a
// cache only; the ledger's ballot seen-set stays authoritative.
type BallotMarker interface {
	IsMarked(ctx context.Context, voter domain.Identity, proposalID uint64) (bool, error)
	Mark(ctx context.Context, voter domain.Identity, proposalID uint64) error
}

// TreasuryConfig carries the governance tunables.
type TreasuryConfig struct {
	// Threshold is the cumulative contribution, in base units, at which an
	// identity becomes a stakeholder.
	Threshold int64
	// VotingWindow is the fixed duration after creation during which a
	// proposal accepts votes.
	VotingWindow time.Duration
	// Now supplies the clock; defaults to time.Now in UTC. It must be
	// non-decreasing across calls.
	Now func() time.Time
}

// Treasury implements ports.TreasuryService. Execution is fully serialized:
// one mutex admits a single operation at a time, every operation runs to
// completion against a consistent ledger snapshot, and the reentrancy guard
// refuses entry while a payout transfer is in flight.
type Treasury struct {
	mu     sync.Mutex
	guard  ReentrancyGuard
	ledger *domain.Ledger

	store    ports.LedgerStore
	transfer ports.Transferor
	sink     ActionSink
	ballots  BallotMarker

	threshold int64
	window    time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewTreasury wires the service around an already-loaded ledger. The ballots
// marker may be nil, in which case the fast path is skipped.
func NewTreasury(
	ledger *domain.Ledger,
	store ports.LedgerStore,
	transfer ports.Transferor,
	sink ActionSink,
	ballots BallotMarker,
	cfg TreasuryConfig,
	log zerolog.Logger,
) *Treasury {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Treasury{
		ledger:    ledger,
		store:     store,
		transfer:  transfer,
		sink:      sink,
		ballots:   ballots,
		threshold: cfg.Threshold,
		window:    cfg.VotingWindow,
		now:       now,
		log:       log,
	}
}

// Contribute adds funds to the pool attributed to the caller, upgrading the
// caller's roles when the cumulative contribution crosses the threshold.
func (t *Treasury) Contribute(ctx context.Context, in ports.ContributeInput) (*ports.ContributeResult, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if in.Caller.IsZero() || in.Amount <= 0 {
		return nil, fmt.Errorf("contribute: %w", domain.ErrInvalidInput)
	}

	next := t.ledger.Clone()
	m := next.Members[in.Caller]
	if m == nil {
		m = &domain.Member{
			Identity: in.Caller,
			Roles:    domain.NewRoleSet(),
			JoinedAt: t.now(),
		}
		next.Members[in.Caller] = m
	}

	if !m.Roles.Has(domain.RoleStakeholder) {
		total := m.Contribution + in.Amount
		if total >= t.threshold {
			// Crossing the threshold stakes only the crossing increment, not
			// the cumulative total. The asymmetry is intentional and kept.
			m.Stake = in.Amount
			m.Roles.Grant(domain.RoleCollaborator)
			m.Roles.Grant(domain.RoleStakeholder)
		} else {
			m.Contribution = total
			m.Roles.Grant(domain.RoleCollaborator)
		}
	} else {
		m.Stake += in.Amount
	}
	next.Pool += in.Amount

	if err := t.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("contribute: persist ledger: %w", err)
	}
	t.ledger = next

	metrics.ContributionsTotal.Inc()
	metrics.PoolBalance.Set(float64(next.Pool))
	t.record(domain.Action{
		Kind:        domain.ActionContribution,
		Actor:       in.Caller,
		Role:        topRole(m.Roles),
		Message:     "contribution received",
		Beneficiary: in.Caller,
		Amount:      in.Amount,
		At:          t.now(),
	})
	t.log.Info().
		Str("identity", string(in.Caller)).
		Int64("amount", in.Amount).
		Int64("pool", next.Pool).
		Msg("contribution recorded")

	return &ports.ContributeResult{PoolBalance: next.Pool, Roles: m.Roles.Tags()}, nil
}

// record forwards an action to the sink when one is configured.
func (t *Treasury) record(action domain.Action) {
	if t.sink != nil {
		t.sink.Record(action)
	}
}

// topRole returns the strongest tag held, for action attribution.
func topRole(roles domain.RoleSet) domain.RoleTag {
	if roles.Has(domain.RoleStakeholder) {
		return domain.RoleStakeholder
	}
	return domain.RoleCollaborator
}
