package service

import (
	"context"
	"fmt"
	"math"

	"github.com/commonfund/treasury-api/internal/api/metrics"
	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// CreateProposal raises a spending proposal. Only stakeholders may propose.
// Pool sufficiency is not checked here; it is re-checked lazily at payout.
func (t *Treasury) CreateProposal(ctx context.Context, in ports.CreateProposalInput) (*ports.ProposalView, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ledger.HasRole(in.Caller, domain.RoleStakeholder) {
		return nil, fmt.Errorf("create proposal: %w", domain.ErrUnauthorized)
	}
	if in.Title == "" || in.Description == "" || in.Beneficiary.IsZero() || in.Amount <= 0 {
		return nil, fmt.Errorf("create proposal: %w", domain.ErrInvalidInput)
	}
	// Sanity check only: the pool counter must stay representable if the
	// proposal is ever funded on top of the current balance.
	if t.ledger.Pool > math.MaxInt64-in.Amount {
		return nil, fmt.Errorf("create proposal: amount overflows pool counter: %w", domain.ErrInvalidInput)
	}

	now := t.now()
	next := t.ledger.Clone()
	p := &domain.Proposal{
		ID:          uint64(len(next.Proposals)),
		Title:       in.Title,
		Description: in.Description,
		Proposer:    in.Caller,
		Beneficiary: in.Beneficiary,
		Amount:      in.Amount,
		Deadline:    now.Add(t.window),
		CreatedAt:   now,
	}
	next.Proposals = append(next.Proposals, p)

	if err := t.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("create proposal: persist ledger: %w", err)
	}
	t.ledger = next

	metrics.ProposalsCreatedTotal.Inc()
	id := p.ID
	t.record(domain.Action{
		Kind:        domain.ActionProposalCreated,
		Actor:       in.Caller,
		Role:        domain.RoleStakeholder,
		Message:     "proposal created",
		Beneficiary: in.Beneficiary,
		Amount:      in.Amount,
		ProposalID:  &id,
		At:          now,
	})
	t.log.Info().
		Uint64("proposal_id", p.ID).
		Str("proposer", string(in.Caller)).
		Int64("amount", in.Amount).
		Time("deadline", p.Deadline).
		Msg("proposal created")

	view := proposalView(p)
	return &view, nil
}

// PerformVote records the caller's vote on a proposal. Precondition order is
// fixed: role, id range, double vote, open window. A vote attempt on an
// expired proposal writes the voting-closed marker before failing, freezing
// the tally permanently.
func (t *Treasury) PerformVote(ctx context.Context, caller domain.Identity, proposalID uint64, choice bool) (*ports.VoteView, error) {
	if err := t.guard.Check(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ledger.HasRole(caller, domain.RoleStakeholder) {
		metrics.VoteRejectionsTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("perform vote: %w", domain.ErrUnauthorized)
	}
	p, ok := t.ledger.Proposal(proposalID)
	if !ok {
		metrics.VoteRejectionsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("perform vote: id %d: %w", proposalID, domain.ErrProposalNotFound)
	}

	// Fast path: the Redis mark catches replays without touching the ledger.
	// Marker errors are logged and ignored; the seen-set below decides.
	if t.ballots != nil {
		marked, err := t.ballots.IsMarked(ctx, caller, proposalID)
		if err != nil {
			t.log.Warn().Err(err).Msg("ballot mark check failed, falling back to ledger")
		} else if marked {
			metrics.VoteRejectionsTotal.WithLabelValues("already_voted").Inc()
			return nil, fmt.Errorf("perform vote: %w", domain.ErrAlreadyDone)
		}
	}
	if t.ledger.HasBallot(caller, proposalID) {
		metrics.VoteRejectionsTotal.WithLabelValues("already_voted").Inc()
		return nil, fmt.Errorf("perform vote: %w", domain.ErrAlreadyDone)
	}

	now := t.now()
	if !p.AcceptingVotes(now) {
		if err := t.closeProposal(ctx, caller, proposalID); err != nil {
			return nil, err
		}
		metrics.VoteRejectionsTotal.WithLabelValues("closed").Inc()
		return nil, fmt.Errorf("perform vote: id %d: %w", proposalID, domain.ErrClosedForVoting)
	}

	next := t.ledger.Clone()
	np, _ := next.Proposal(proposalID)
	if choice {
		np.UpVotes++
	} else {
		np.DownVotes++
	}
	vote := domain.Vote{Voter: caller, Choice: choice, CastAt: now}
	np.Votes = append(np.Votes, vote)
	nm := next.Members[caller]
	nm.Voted = append(nm.Voted, proposalID)
	next.Ballots[domain.BallotKey{Voter: caller, Proposal: proposalID}] = struct{}{}

	if err := t.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("perform vote: persist ledger: %w", err)
	}
	t.ledger = next

	if t.ballots != nil {
		if err := t.ballots.Mark(ctx, caller, proposalID); err != nil {
			t.log.Warn().Err(err).Msg("failed to set ballot mark")
		}
	}

	choiceLabel := "down"
	if choice {
		choiceLabel = "up"
	}
	metrics.VotesCastTotal.WithLabelValues(choiceLabel).Inc()
	id := proposalID
	c := choice
	t.record(domain.Action{
		Kind:        domain.ActionVoteCast,
		Actor:       caller,
		Role:        domain.RoleStakeholder,
		Message:     "vote cast",
		Beneficiary: np.Beneficiary,
		Amount:      np.Amount,
		ProposalID:  &id,
		UpVotes:     np.UpVotes,
		DownVotes:   np.DownVotes,
		Choice:      &c,
		At:          now,
	})
	t.log.Info().
		Uint64("proposal_id", proposalID).
		Str("voter", string(caller)).
		Bool("choice", choice).
		Int64("up", np.UpVotes).
		Int64("down", np.DownVotes).
		Msg("vote recorded")

	return &ports.VoteView{Voter: vote.Voter, Choice: vote.Choice, CastAt: vote.CastAt}, nil
}

// closeProposal writes the voting-closed marker. The flag shares a field with
// the legacy "passed" name but only ever means "no further votes"; the marker
// write is idempotent and skipped when already set.
func (t *Treasury) closeProposal(ctx context.Context, caller domain.Identity, proposalID uint64) error {
	p, _ := t.ledger.Proposal(proposalID)
	if p.Passed {
		return nil
	}

	next := t.ledger.Clone()
	np, _ := next.Proposal(proposalID)
	np.Passed = true

	if err := t.store.Save(ctx, next); err != nil {
		return fmt.Errorf("close proposal: persist ledger: %w", err)
	}
	t.ledger = next

	id := proposalID
	t.record(domain.Action{
		Kind:        domain.ActionProposalClosed,
		Actor:       caller,
		Role:        domain.RoleStakeholder,
		Message:     "proposal closed for voting",
		Beneficiary: np.Beneficiary,
		Amount:      np.Amount,
		ProposalID:  &id,
		UpVotes:     np.UpVotes,
		DownVotes:   np.DownVotes,
		At:          t.now(),
	})
	t.log.Info().Uint64("proposal_id", proposalID).Msg("proposal closed for voting")
	return nil
}

func proposalView(p *domain.Proposal) ports.ProposalView {
	return ports.ProposalView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Proposer:    p.Proposer,
		Beneficiary: p.Beneficiary,
		Amount:      p.Amount,
		UpVotes:     p.UpVotes,
		DownVotes:   p.DownVotes,
		Deadline:    p.Deadline,
		Passed:      p.Passed,
		Paid:        p.Paid,
		Executor:    p.Executor,
		CreatedAt:   p.CreatedAt,
	}
}
