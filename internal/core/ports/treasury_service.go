package ports

import (
	"context"
	"time"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// ContributeInput carries one contribution attributed to Caller.
type ContributeInput struct {
	Caller domain.Identity
	Amount int64
}

// ContributeResult is returned after a successful contribution.
type ContributeResult struct {
	PoolBalance int64
	// Roles holds the caller's capability tags after the contribution, so the
	// client can observe a threshold crossing immediately.
	Roles []domain.RoleTag
}

// CreateProposalInput carries all data needed to raise a spending proposal.
type CreateProposalInput struct {
	Caller      domain.Identity
	Title       string
	Description string
	Beneficiary domain.Identity
	Amount      int64
}

// ProposalView is the read model for a proposal.
type ProposalView struct {
	ID          uint64
	Title       string
	Description string
	Proposer    domain.Identity
	Beneficiary domain.Identity
	Amount      int64
	UpVotes     int64
	DownVotes   int64
	Deadline    time.Time
	Passed      bool
	Paid        bool
	Executor    domain.Identity
	CreatedAt   time.Time
}

// VoteView is the read model for a single recorded vote.
type VoteView struct {
	Voter  domain.Identity
	Choice bool
	CastAt time.Time
}

// MemberStatus reports which capability tags the caller holds.
type MemberStatus struct {
	IsCollaborator bool
	IsStakeholder  bool
}

// TreasuryService defines every governance and treasury operation. Gates are
// enforced inside the service; transport-level role checks are a fast path
// only.
type TreasuryService interface {
	Contribute(ctx context.Context, in ContributeInput) (*ContributeResult, error)
	CreateProposal(ctx context.Context, in CreateProposalInput) (*ProposalView, error)
	PerformVote(ctx context.Context, caller domain.Identity, proposalID uint64, choice bool) (*VoteView, error)
	PayBeneficiary(ctx context.Context, caller domain.Identity, proposalID uint64) (int64, error)

	Proposal(ctx context.Context, proposalID uint64) (*ProposalView, error)
	Proposals(ctx context.Context) ([]ProposalView, error)
	ProposalVotes(ctx context.Context, proposalID uint64) ([]VoteView, error)
	MemberVotes(ctx context.Context, caller domain.Identity) ([]uint64, error)
	StakeBalance(ctx context.Context, caller domain.Identity) (int64, error)
	ContributionBalance(ctx context.Context, caller domain.Identity) (int64, error)
	Status(ctx context.Context, caller domain.Identity) (MemberStatus, error)
	TotalBalance(ctx context.Context) (int64, error)
	Deployer(ctx context.Context) (domain.Identity, error)

	// HasRole is the transport fast-path check used by the role-gate
	// middleware.
	HasRole(ctx context.Context, caller domain.Identity, tag domain.RoleTag) bool
}
