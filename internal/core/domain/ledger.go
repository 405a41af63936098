package domain

// BallotKey identifies one (voter, proposal) pair in the seen-set that
// enforces the one-vote-per-pair rule without scanning vote history.
type BallotKey struct {
	Voter    Identity
	Proposal uint64
}

// Ledger is the single exclusively-owned state object of the treasury. All
// mutation goes through the treasury service, which replaces the ledger
// wholesale on each successful operation; the ledger itself is a passive
// record with read accessors. Nothing in it is ever deleted.
type Ledger struct {
	Deployer  Identity
	Pool      int64
	Members   map[Identity]*Member
	Proposals []*Proposal
	Ballots   map[BallotKey]struct{}
}

// NewLedger returns an empty ledger owned by the given deployer identity.
func NewLedger(deployer Identity) *Ledger {
	return &Ledger{
		Deployer: deployer,
		Members:  make(map[Identity]*Member),
		Ballots:  make(map[BallotKey]struct{}),
	}
}

// Member returns the member record for id, or nil when the identity has never
// contributed.
func (l *Ledger) Member(id Identity) *Member {
	return l.Members[id]
}

// HasRole reports whether the identity holds the given capability tag.
func (l *Ledger) HasRole(id Identity, tag RoleTag) bool {
	m := l.Members[id]
	return m != nil && m.Roles.Has(tag)
}

// Proposal returns the proposal with the given id.
func (l *Ledger) Proposal(id uint64) (*Proposal, bool) {
	if id >= uint64(len(l.Proposals)) {
		return nil, false
	}
	return l.Proposals[id], true
}

// HasBallot reports whether the (voter, proposal) pair has already voted.
func (l *Ledger) HasBallot(voter Identity, proposalID uint64) bool {
	_, ok := l.Ballots[BallotKey{Voter: voter, Proposal: proposalID}]
	return ok
}

// Clone returns a deep copy of the ledger. Operations build their next state
// on a clone and swap it in only after persistence succeeds, so a failure at
// any point leaves the live ledger untouched.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		Deployer:  l.Deployer,
		Pool:      l.Pool,
		Members:   make(map[Identity]*Member, len(l.Members)),
		Proposals: make([]*Proposal, len(l.Proposals)),
		Ballots:   make(map[BallotKey]struct{}, len(l.Ballots)),
	}
	for id, m := range l.Members {
		out.Members[id] = m.Clone()
	}
	for i, p := range l.Proposals {
		out.Proposals[i] = p.Clone()
	}
	for k := range l.Ballots {
		out.Ballots[k] = struct{}{}
	}
	return out
}
