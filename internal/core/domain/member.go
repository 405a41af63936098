package domain

import (
	"sort"
	"time"
)

// Identity is the opaque caller key every record is attributed to. It carries
// no semantics beyond being a lookup key.
type Identity string

// IsZero reports whether the identity is absent.
func (id Identity) IsZero() bool { return id == "" }

// RoleTag is a capability tag held by a member.
type RoleTag string

const (
	// RoleCollaborator is granted on any contribution below the stakeholder
	// threshold.
	RoleCollaborator RoleTag = "collaborator"
	// RoleStakeholder is granted once cumulative contributions cross the
	// threshold. Stakeholders may propose, vote, and (if also the deployer)
	// execute payouts.
	RoleStakeholder RoleTag = "stakeholder"
)

// RoleSet is the set of capability tags held by one identity. Tags are only
// ever added; no removal operation exists.
type RoleSet map[RoleTag]struct{}

// NewRoleSet returns a RoleSet holding the given tags.
func NewRoleSet(tags ...RoleTag) RoleSet {
	s := make(RoleSet, len(tags))
	for _, tag := range tags {
		s[tag] = struct{}{}
	}
	return s
}

// Grant adds a tag to the set. Granting an already-held tag is a no-op.
func (s RoleSet) Grant(tag RoleTag) {
	s[tag] = struct{}{}
}

// Has reports whether the tag is held.
func (s RoleSet) Has(tag RoleTag) bool {
	_, ok := s[tag]
	return ok
}

// Tags returns the held tags in stable order.
func (s RoleSet) Tags() []RoleTag {
	tags := make([]RoleTag, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Clone returns an independent copy of the set.
func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for tag := range s {
		out[tag] = struct{}{}
	}
	return out
}

// Member is one identity's standing in the treasury: its roles, its
// contribution record (tracked only while below the threshold), its stake
// balance, and the proposals it has voted on.
type Member struct {
	Identity     Identity
	Roles        RoleSet
	Contribution int64
	Stake        int64
	Voted        []uint64
	JoinedAt     time.Time
}

// Clone returns a deep copy of the member.
func (m *Member) Clone() *Member {
	out := *m
	out.Roles = m.Roles.Clone()
	out.Voted = append([]uint64(nil), m.Voted...)
	return &out
}
