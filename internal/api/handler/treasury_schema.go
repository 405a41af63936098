package handler

import (
	"time"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// --- Request / Response types ---
//
// Response-only types owned by the transport layer. These are intentionally
// separate from ports/domain types so the JSON contract is not coupled to
// internal service changes.

type contributeRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type contributeResponse struct {
	PoolBalance int64    `json:"pool_balance"`
	Roles       []string `json:"roles"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type deployerResponse struct {
	Deployer string `json:"deployer"`
}

type createProposalRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Beneficiary string `json:"beneficiary" validate:"required"`
	Amount      int64  `json:"amount"      validate:"required,gt=0"`
}

type proposalResponse struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Proposer    string    `json:"proposer"`
	Beneficiary string    `json:"beneficiary"`
	Amount      int64     `json:"amount"`
	UpVotes     int64     `json:"up_votes"`
	DownVotes   int64     `json:"down_votes"`
	Deadline    time.Time `json:"deadline"`
	Passed      bool      `json:"passed"`
	Paid        bool      `json:"paid"`
	Executor    string    `json:"executor,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type listProposalsResponse struct {
	Data []proposalResponse `json:"data"`
}

type castVoteRequest struct {
	// Approve is a pointer so an omitted field is distinguishable from an
	// explicit down-vote.
	Approve *bool `json:"approve" validate:"required"`
}

type voteResponse struct {
	Voter   string    `json:"voter"`
	Approve bool      `json:"approve"`
	CastAt  time.Time `json:"cast_at"`
}

type listVotesResponse struct {
	Data []voteResponse `json:"data"`
}

type payoutResponse struct {
	ProposalID  uint64 `json:"proposal_id"`
	Amount      int64  `json:"amount"`
	PoolBalance int64  `json:"pool_balance"`
}

type memberVotesResponse struct {
	ProposalIDs []uint64 `json:"proposal_ids"`
}

type statusResponse struct {
	IsCollaborator bool `json:"is_collaborator"`
	IsStakeholder  bool `json:"is_stakeholder"`
}

type actionResponse struct {
	Kind        string    `json:"kind"`
	Actor       string    `json:"actor,omitempty"`
	Role        string    `json:"role,omitempty"`
	Message     string    `json:"message,omitempty"`
	Beneficiary string    `json:"beneficiary,omitempty"`
	Amount      int64     `json:"amount,omitempty"`
	ProposalID  *uint64   `json:"proposal_id,omitempty"`
	UpVotes     int64     `json:"up_votes,omitempty"`
	DownVotes   int64     `json:"down_votes,omitempty"`
	Approve     *bool     `json:"approve,omitempty"`
	At          time.Time `json:"at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listActionsResponse struct {
	Data       []actionResponse   `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Mapping helpers ---

func toProposalResponse(v *ports.ProposalView) proposalResponse {
	return proposalResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Proposer:    string(v.Proposer),
		Beneficiary: string(v.Beneficiary),
		Amount:      v.Amount,
		UpVotes:     v.UpVotes,
		DownVotes:   v.DownVotes,
		Deadline:    v.Deadline,
		Passed:      v.Passed,
		Paid:        v.Paid,
		Executor:    string(v.Executor),
		CreatedAt:   v.CreatedAt,
	}
}

func toActionResponse(a *domain.Action) actionResponse {
	return actionResponse{
		Kind:        string(a.Kind),
		Actor:       string(a.Actor),
		Role:        string(a.Role),
		Message:     a.Message,
		Beneficiary: string(a.Beneficiary),
		Amount:      a.Amount,
		ProposalID:  a.ProposalID,
		UpVotes:     a.UpVotes,
		DownVotes:   a.DownVotes,
		Approve:     a.Choice,
		At:          a.At,
	}
}

func roleTags(tags []domain.RoleTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}
