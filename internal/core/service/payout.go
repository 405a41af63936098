package service

import (
	"context"
	"fmt"
	"time"

	"github.com/commonfund/treasury-api/internal/api/metrics"
	"github.com/commonfund/treasury-api/internal/core/domain"
)

// PayBeneficiary executes a passed proposal's payout. The caller must hold
// the stakeholder role and be the deployer; the tally must be strictly
// net-positive and the pool must cover the amount. The reentrancy guard stays
// armed from before the transfer call until the post-transfer commit, so any
// service entry attempted from inside the transfer is refused.
func (t *Treasury) PayBeneficiary(ctx context.Context, caller domain.Identity, proposalID uint64) (int64, error) {
	if err := t.guard.Check(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ledger.HasRole(caller, domain.RoleStakeholder) || caller != t.ledger.Deployer {
		return 0, fmt.Errorf("pay beneficiary: %w", domain.ErrUnauthorized)
	}
	p, ok := t.ledger.Proposal(proposalID)
	if !ok {
		return 0, fmt.Errorf("pay beneficiary: id %d: %w", proposalID, domain.ErrProposalNotFound)
	}
	if t.ledger.Pool < p.Amount {
		return 0, fmt.Errorf("pay beneficiary: pool %d below amount %d: %w", t.ledger.Pool, p.Amount, domain.ErrInsufficientState)
	}
	if p.Paid {
		return 0, fmt.Errorf("pay beneficiary: id %d: %w", proposalID, domain.ErrAlreadyDone)
	}
	// Success is always the live tally, never the voting-closed marker.
	if !p.TallyPassing() {
		return 0, fmt.Errorf("pay beneficiary: tally %d/%d not net-positive: %w", p.UpVotes, p.DownVotes, domain.ErrInsufficientState)
	}

	if !t.guard.Arm() {
		return 0, domain.ErrReentrantCall
	}
	defer t.guard.Disarm()

	start := time.Now()
	err := t.transfer.Transfer(ctx, p.Beneficiary, p.Amount)
	metrics.TransferDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PayoutsTotal.WithLabelValues("transfer_failed").Inc()
		t.log.Error().Err(err).
			Uint64("proposal_id", proposalID).
			Str("beneficiary", string(p.Beneficiary)).
			Int64("amount", p.Amount).
			Msg("beneficiary transfer failed")
		return 0, fmt.Errorf("pay beneficiary: %v: %w", err, domain.ErrTransferFailed)
	}

	next := t.ledger.Clone()
	np, _ := next.Proposal(proposalID)
	np.Paid = true
	np.Executor = caller
	next.Pool -= np.Amount

	// The transfer already settled; a persistence failure here must not lose
	// the payment. The in-memory ledger commits regardless and the miss is
	// logged for operator reconciliation.
	if err := t.store.Save(ctx, next); err != nil {
		t.log.Error().Err(err).Uint64("proposal_id", proposalID).Msg("ledger persist failed after settled transfer")
	}
	t.ledger = next

	metrics.PayoutsTotal.WithLabelValues("success").Inc()
	metrics.PoolBalance.Set(float64(next.Pool))
	id := proposalID
	t.record(domain.Action{
		Kind:        domain.ActionPayment,
		Actor:       caller,
		Role:        domain.RoleStakeholder,
		Message:     "beneficiary paid",
		Beneficiary: np.Beneficiary,
		Amount:      np.Amount,
		ProposalID:  &id,
		At:          t.now(),
	})
	t.log.Info().
		Uint64("proposal_id", proposalID).
		Str("beneficiary", string(np.Beneficiary)).
		Int64("amount", np.Amount).
		Int64("pool", next.Pool).
		Msg("payout executed")

	return next.Pool, nil
}
