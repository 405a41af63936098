package domain

import "time"

// Vote is one stakeholder's recorded choice on a proposal. Votes are appended
// once and never mutated or removed.
type Vote struct {
	Voter  Identity
	Choice bool
	CastAt time.Time
}

// Proposal is a spending request against the pool. Ids are dense and start at
// zero; once assigned, id, title, description, proposer, beneficiary, amount
// and deadline never change. Tallies only ever increase, and Paid and Passed
// only ever flip false to true.
type Proposal struct {
	ID          uint64
	Title       string
	Description string
	Proposer    Identity
	Beneficiary Identity
	Amount      int64
	UpVotes     int64
	DownVotes   int64
	Deadline    time.Time
	// Passed is a voting-closed marker, set by the first vote attempt that
	// arrives after the deadline. It never indicates that the proposal
	// succeeded; payout eligibility is always computed fresh via TallyPassing.
	Passed    bool
	Paid      bool
	Executor  Identity
	Votes     []Vote
	CreatedAt time.Time
}

// AcceptingVotes reports whether the proposal can still take votes at now.
// Closure is lazy: an expired proposal keeps accepting nothing, but the Passed
// marker is only written when the first late attempt is rejected.
func (p *Proposal) AcceptingVotes(now time.Time) bool {
	return !p.Passed && p.Deadline.After(now)
}

// TallyPassing reports a strictly net-positive tally. This, never the Passed
// flag, decides payout eligibility.
func (p *Proposal) TallyPassing() bool {
	return p.UpVotes > p.DownVotes
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	out := *p
	out.Votes = append([]Vote(nil), p.Votes...)
	return &out
}
