package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

type chanActionRepo struct {
	appended chan domain.Action
	failNext bool
}

func (r *chanActionRepo) Append(_ context.Context, action *domain.Action) error {
	if r.failNext {
		r.failNext = false
		return errors.New("mongo unavailable")
	}
	r.appended <- *action
	return nil
}

func (r *chanActionRepo) List(context.Context, ports.ActionFilter) ([]domain.Action, int64, error) {
	return nil, 0, nil
}

func receive(t *testing.T, ch chan domain.Action) domain.Action {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for appended action")
		return domain.Action{}
	}
}

func TestWriter_PersistsActionsInOrder(t *testing.T) {
	repo := &chanActionRepo{appended: make(chan domain.Action, 8)}
	w := NewWriter(8, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Record(domain.Action{Kind: domain.ActionContribution, Actor: "0xAA"})
	w.Record(domain.Action{Kind: domain.ActionVoteCast, Actor: "0xBB"})

	first := receive(t, repo.appended)
	second := receive(t, repo.appended)
	if first.Kind != domain.ActionContribution || second.Kind != domain.ActionVoteCast {
		t.Errorf("order broken: got %q then %q", first.Kind, second.Kind)
	}
}

func TestWriter_KeepsRunningAfterRepoFailure(t *testing.T) {
	repo := &chanActionRepo{appended: make(chan domain.Action, 8), failNext: true}
	w := NewWriter(8, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Record(domain.Action{Kind: domain.ActionContribution}) // dropped by the failing append
	w.Record(domain.Action{Kind: domain.ActionPayment})

	got := receive(t, repo.appended)
	if got.Kind != domain.ActionPayment {
		t.Errorf("expected the later action to persist, got %q", got.Kind)
	}
}
