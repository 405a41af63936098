package service

import (
	"sync/atomic"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// ReentrancyGuard protects the payout's external transfer call. It is armed
// for the full duration of PayBeneficiary's critical section, from before the
// transfer primitive is invoked until the post-transfer commit completes.
// While armed, every guarded service entry point is refused outright rather
// than queued, which rejects any nested invocation triggered from inside the
// transfer callback.
type ReentrancyGuard struct {
	armed atomic.Bool
}

// Check fails with ErrReentrantCall while a transfer is in flight. Guarded
// operations call it before taking the serialization lock, so a reentrant
// caller is rejected instead of deadlocking.
func (g *ReentrancyGuard) Check() error {
	if g.armed.Load() {
		return domain.ErrReentrantCall
	}
	return nil
}

// Arm opens the exclusive transfer window. It reports false when the window
// is already open.
func (g *ReentrancyGuard) Arm() bool {
	return g.armed.CompareAndSwap(false, true)
}

// Disarm closes the transfer window. Callers defer it so the guard is
// released on every exit path.
func (g *ReentrancyGuard) Disarm() {
	g.armed.Store(false)
}
