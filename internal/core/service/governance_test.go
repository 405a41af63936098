package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// CreateProposal
// ---------------------------------------------------------------------------

func TestCreateProposal_RequiresStakeholder(t *testing.T) {
	env := newTestEnv()
	env.contribute(t, alice, 5) // collaborator only

	_, err := env.svc.CreateProposal(context.Background(), ports.CreateProposalInput{
		Caller: alice, Title: "t", Description: "d", Beneficiary: carol, Amount: 1,
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateProposal_RejectsIncompleteInput(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)

	cases := []struct {
		name string
		in   ports.CreateProposalInput
	}{
		{"empty title", ports.CreateProposalInput{Caller: alice, Description: "d", Beneficiary: carol, Amount: 1}},
		{"empty description", ports.CreateProposalInput{Caller: alice, Title: "t", Beneficiary: carol, Amount: 1}},
		{"zero beneficiary", ports.CreateProposalInput{Caller: alice, Title: "t", Description: "d", Amount: 1}},
		{"zero amount", ports.CreateProposalInput{Caller: alice, Title: "t", Description: "d", Beneficiary: carol}},
		{"negative amount", ports.CreateProposalInput{Caller: alice, Title: "t", Description: "d", Beneficiary: carol, Amount: -2}},
	}
	for _, tc := range cases {
		if _, err := env.svc.CreateProposal(context.Background(), tc.in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestCreateProposal_AssignsDenseIDsAndDeadline(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)

	first := env.createProposal(t, alice, 3)
	second := env.createProposal(t, alice, 4)

	if first.ID != 0 || second.ID != 1 {
		t.Errorf("ids must be dense from 0: got %d, %d", first.ID, second.ID)
	}
	if first.UpVotes != 0 || first.DownVotes != 0 || first.Paid || first.Passed {
		t.Errorf("fresh proposal must start zeroed: %+v", first)
	}
	wantDeadline := env.clock.t.Add(testWindow)
	if !first.Deadline.Equal(wantDeadline) {
		t.Errorf("deadline: want %v, got %v", wantDeadline, first.Deadline)
	}
}

func TestCreateProposal_DoesNotRequirePoolSufficiency(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice) // pool = 10

	// Sufficiency is checked lazily at payout, not at creation.
	if _, err := env.svc.CreateProposal(context.Background(), ports.CreateProposalInput{
		Caller: alice, Title: "t", Description: "d", Beneficiary: carol, Amount: 10_000,
	}); err != nil {
		t.Errorf("creation must not check pool sufficiency: %v", err)
	}
}

func TestCreateProposal_OverflowSanityCheck(t *testing.T) {
	env := newTestEnv()
	env.contribute(t, alice, math.MaxInt64-1) // single crossing contribution

	_, err := env.svc.CreateProposal(context.Background(), ports.CreateProposalInput{
		Caller: alice, Title: "t", Description: "d", Beneficiary: carol, Amount: 2,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput on counter overflow, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// PerformVote
// ---------------------------------------------------------------------------

func TestPerformVote_RecordsVoteAndTally(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)

	vote, err := env.svc.PerformVote(context.Background(), alice, p.ID, true)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if vote.Voter != alice || !vote.Choice {
		t.Errorf("unexpected vote record: %+v", vote)
	}
	if !vote.CastAt.Equal(env.clock.t) {
		t.Errorf("vote timestamp: want %v, got %v", env.clock.t, vote.CastAt)
	}

	updated, _ := env.svc.Proposal(context.Background(), p.ID)
	if updated.UpVotes != 1 || updated.DownVotes != 0 {
		t.Errorf("tally: want 1/0, got %d/%d", updated.UpVotes, updated.DownVotes)
	}

	votes, _ := env.svc.ProposalVotes(context.Background(), p.ID)
	if len(votes) != 1 {
		t.Fatalf("expected 1 recorded vote, got %d", len(votes))
	}
	mine, err := env.svc.MemberVotes(context.Background(), alice)
	if err != nil {
		t.Fatalf("member votes: %v", err)
	}
	if len(mine) != 1 || mine[0] != p.ID {
		t.Errorf("voted list: want [%d], got %v", p.ID, mine)
	}
}

func TestPerformVote_DownVote(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)

	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, false); err != nil {
		t.Fatalf("vote: %v", err)
	}
	updated, _ := env.svc.Proposal(context.Background(), p.ID)
	if updated.UpVotes != 0 || updated.DownVotes != 1 {
		t.Errorf("tally: want 0/1, got %d/%d", updated.UpVotes, updated.DownVotes)
	}
}

func TestPerformVote_RequiresStakeholder(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)
	env.contribute(t, bob, 5) // collaborator only

	if _, err := env.svc.PerformVote(context.Background(), bob, p.ID, true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPerformVote_UnknownProposal(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)

	if _, err := env.svc.PerformVote(context.Background(), alice, 42, true); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Errorf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestPerformVote_DoubleVoteRejected(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)

	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); !errors.Is(err, domain.ErrAlreadyDone) {
		t.Errorf("expected ErrAlreadyDone, got %v", err)
	}

	updated, _ := env.svc.Proposal(context.Background(), p.ID)
	if updated.UpVotes != 1 {
		t.Errorf("tally must stay 1 after rejected double vote, got %d", updated.UpVotes)
	}
}

func TestPerformVote_DoubleVote_FastPathWithoutLedgerEntry(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)

	// Only the Redis mark knows; the seen-set does not. The fast path must
	// still reject.
	env.marker.marks[domain.BallotKey{Voter: alice, Proposal: p.ID}] = true

	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); !errors.Is(err, domain.ErrAlreadyDone) {
		t.Errorf("expected ErrAlreadyDone from fast path, got %v", err)
	}
}

func TestPerformVote_MarkerFailureFallsBackToLedger(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)
	env.marker.checkErr = errors.New("redis down")

	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); err != nil {
		t.Fatalf("marker failure must not block voting: %v", err)
	}
	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); !errors.Is(err, domain.ErrAlreadyDone) {
		t.Errorf("ledger seen-set must still reject replay, got %v", err)
	}
}

func TestPerformVote_AfterDeadline_ClosesProposal(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	env.makeStakeholder(t, bob)
	p := env.createProposal(t, alice, 3)
	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	env.clock.advance(testWindow + time.Second)

	savesBefore := env.store.saves
	_, err := env.svc.PerformVote(context.Background(), bob, p.ID, true)
	if !errors.Is(err, domain.ErrClosedForVoting) {
		t.Fatalf("expected ErrClosedForVoting, got %v", err)
	}

	updated, _ := env.svc.Proposal(context.Background(), p.ID)
	if !updated.Passed {
		t.Error("first late attempt must set the voting-closed marker")
	}
	if updated.UpVotes != 1 || updated.DownVotes != 0 {
		t.Errorf("tally must be frozen at 1/0, got %d/%d", updated.UpVotes, updated.DownVotes)
	}
	// The marker write is the one persisted effect of this failure path.
	if env.store.saves != savesBefore+1 {
		t.Errorf("expected exactly one persist for the close marker, got %d", env.store.saves-savesBefore)
	}
	if env.sink.lastKind() != domain.ActionProposalClosed {
		t.Errorf("expected proposal_closed action, got %q", env.sink.lastKind())
	}
}

func TestPerformVote_OnClosedProposal_DoesNotRewriteMarker(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	env.makeStakeholder(t, bob)
	p := env.createProposal(t, alice, 3)

	env.clock.advance(testWindow + time.Second)
	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); !errors.Is(err, domain.ErrClosedForVoting) {
		t.Fatalf("first late attempt: %v", err)
	}

	savesBefore := env.store.saves
	if _, err := env.svc.PerformVote(context.Background(), bob, p.ID, false); !errors.Is(err, domain.ErrClosedForVoting) {
		t.Errorf("expected ErrClosedForVoting on marked proposal, got %v", err)
	}
	if env.store.saves != savesBefore {
		t.Errorf("already-closed rejection must not persist again, got %d extra saves", env.store.saves-savesBefore)
	}
}

func TestPerformVote_EmitsVoteActionWithTally(t *testing.T) {
	env := newTestEnv()
	env.makeStakeholder(t, alice)
	p := env.createProposal(t, alice, 3)

	if _, err := env.svc.PerformVote(context.Background(), alice, p.ID, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	action := env.sink.actions[len(env.sink.actions)-1]
	if action.Kind != domain.ActionVoteCast {
		t.Fatalf("expected vote_cast action, got %q", action.Kind)
	}
	if action.UpVotes != 1 || action.DownVotes != 0 {
		t.Errorf("action tally: want 1/0, got %d/%d", action.UpVotes, action.DownVotes)
	}
	if action.Choice == nil || !*action.Choice {
		t.Error("vote action must carry the choice")
	}
	if action.ProposalID == nil || *action.ProposalID != p.ID {
		t.Error("vote action must carry the proposal id")
	}
}

// ---------------------------------------------------------------------------
// Read queries
// ---------------------------------------------------------------------------

func TestQueries_GatesAndScoping(t *testing.T) {
	env := newTestEnv()
	env.contribute(t, bob, 4) // collaborator

	if _, err := env.svc.MemberVotes(context.Background(), bob); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("member votes must be stakeholder-gated, got %v", err)
	}
	if _, err := env.svc.StakeBalance(context.Background(), bob); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("stake balance must be stakeholder-gated, got %v", err)
	}
	if _, err := env.svc.ContributionBalance(context.Background(), carol); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("contribution balance must be collaborator-gated, got %v", err)
	}

	balance, err := env.svc.ContributionBalance(context.Background(), bob)
	if err != nil {
		t.Fatalf("collaborator must read own contribution: %v", err)
	}
	if balance != 4 {
		t.Errorf("contribution: want 4, got %d", balance)
	}
}

func TestQueries_DeployerAndStatusOpenToAnyone(t *testing.T) {
	env := newTestEnv()

	id, err := env.svc.Deployer(context.Background())
	if err != nil {
		t.Fatalf("deployer: %v", err)
	}
	if id != deployer {
		t.Errorf("deployer: want %s, got %s", deployer, id)
	}

	status, err := env.svc.Status(context.Background(), carol)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.IsCollaborator || status.IsStakeholder {
		t.Errorf("unknown identity must hold no roles: %+v", status)
	}
}

func TestQueries_UnknownProposalID(t *testing.T) {
	env := newTestEnv()

	if _, err := env.svc.Proposal(context.Background(), 0); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Errorf("proposal: expected ErrProposalNotFound, got %v", err)
	}
	if _, err := env.svc.ProposalVotes(context.Background(), 0); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Errorf("votes: expected ErrProposalNotFound, got %v", err)
	}
}
