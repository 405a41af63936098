package domain

import "time"

// ActionKind labels an entry in the append-only governance log.
type ActionKind string

const (
	ActionContribution    ActionKind = "contribution"
	ActionProposalCreated ActionKind = "proposal_created"
	ActionVoteCast        ActionKind = "vote_cast"
	ActionProposalClosed  ActionKind = "proposal_closed"
	ActionPayment         ActionKind = "payment"
)

// Action is one record in the governance log. Vote records additionally carry
// the tally after the vote and the choice; Choice is nil for every other kind.
type Action struct {
	Kind        ActionKind
	Actor       Identity
	Role        RoleTag
	Message     string
	Beneficiary Identity
	Amount      int64
	ProposalID  *uint64
	UpVotes     int64
	DownVotes   int64
	Choice      *bool
	At          time.Time
}
