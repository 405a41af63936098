package service

import (
	"context"
	"fmt"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// Reads run under the same serialization lock as mutations so each call
// observes one consistent ledger snapshot. They are also guard-checked: a
// read attempted from inside a payout transfer is refused like any other
// reentrant entry.

// Proposal returns one proposal by id.
func (t *Treasury) Proposal(ctx context.Context, proposalID uint64) (*ports.ProposalView, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.ledger.Proposal(proposalID)
	if !ok {
		return nil, fmt.Errorf("get proposal: id %d: %w", proposalID, domain.ErrProposalNotFound)
	}
	view := proposalView(p)
	return &view, nil
}

// Proposals returns every proposal in id order.
func (t *Treasury) Proposals(ctx context.Context) ([]ports.ProposalView, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	views := make([]ports.ProposalView, len(t.ledger.Proposals))
	for i, p := range t.ledger.Proposals {
		views[i] = proposalView(p)
	}
	return views, nil
}

// ProposalVotes returns the recorded votes of one proposal in cast order.
func (t *Treasury) ProposalVotes(ctx context.Context, proposalID uint64) ([]ports.VoteView, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.ledger.Proposal(proposalID)
	if !ok {
		return nil, fmt.Errorf("get proposal votes: id %d: %w", proposalID, domain.ErrProposalNotFound)
	}
	views := make([]ports.VoteView, len(p.Votes))
	for i, v := range p.Votes {
		views[i] = ports.VoteView{Voter: v.Voter, Choice: v.Choice, CastAt: v.CastAt}
	}
	return views, nil
}

// MemberVotes returns the ids of proposals the caller has voted on.
// Stakeholder-gated and caller-scoped.
func (t *Treasury) MemberVotes(ctx context.Context, caller domain.Identity) ([]uint64, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.ledger.Member(caller)
	if m == nil || !m.Roles.Has(domain.RoleStakeholder) {
		return nil, fmt.Errorf("get member votes: %w", domain.ErrUnauthorized)
	}
	return append([]uint64(nil), m.Voted...), nil
}

// StakeBalance returns the caller's staked amount. Stakeholder-gated.
func (t *Treasury) StakeBalance(ctx context.Context, caller domain.Identity) (int64, error) {
	if err := t.guard.Check(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.ledger.Member(caller)
	if m == nil || !m.Roles.Has(domain.RoleStakeholder) {
		return 0, fmt.Errorf("get stake balance: %w", domain.ErrUnauthorized)
	}
	return m.Stake, nil
}

// ContributionBalance returns the caller's below-threshold contribution
// record. Collaborator-gated.
func (t *Treasury) ContributionBalance(ctx context.Context, caller domain.Identity) (int64, error) {
	if err := t.guard.Check(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.ledger.Member(caller)
	if m == nil || !m.Roles.Has(domain.RoleCollaborator) {
		return 0, fmt.Errorf("get contribution balance: %w", domain.ErrUnauthorized)
	}
	return m.Contribution, nil
}

// Status reports the caller's capability tags. Open to any identity; an
// unknown identity simply holds nothing.
func (t *Treasury) Status(ctx context.Context, caller domain.Identity) (ports.MemberStatus, error) {
	if err := t.guard.Check(); err != nil {
		return ports.MemberStatus{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	return ports.MemberStatus{
		IsCollaborator: t.ledger.HasRole(caller, domain.RoleCollaborator),
		IsStakeholder:  t.ledger.HasRole(caller, domain.RoleStakeholder),
	}, nil
}

// TotalBalance returns the custodied pool balance.
func (t *Treasury) TotalBalance(ctx context.Context) (int64, error) {
	if err := t.guard.Check(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Pool, nil
}

// Deployer returns the operator identity authorized to execute payouts.
func (t *Treasury) Deployer(ctx context.Context) (domain.Identity, error) {
	if err := t.guard.Check(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Deployer, nil
}

// HasRole is the transport fast path used by the role-gate middleware.
func (t *Treasury) HasRole(ctx context.Context, caller domain.Identity, tag domain.RoleTag) bool {
	if err := t.guard.Check(); err != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.HasRole(caller, tag)
}
