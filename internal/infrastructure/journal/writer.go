// Package journal persists governance actions to the append-only log
// asynchronously, so ledger operations never block on the audit write.
package journal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/ports"
)

const channelBuffer = 256

// Writer buffers actions on a channel and drains them to the repository from
// a single worker, preserving append order. Persistence failures are logged
// and never surfaced to the operation that produced the action.
type Writer struct {
	ch   chan domain.Action
	repo ports.ActionRepository
	log  zerolog.Logger
}

// NewWriter creates a Writer. If buffer <= 0, channelBuffer is used.
func NewWriter(buffer int, repo ports.ActionRepository, log zerolog.Logger) *Writer {
	if buffer <= 0 {
		buffer = channelBuffer
	}
	return &Writer{
		ch:   make(chan domain.Action, buffer),
		repo: repo,
		log:  log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is
// cancelled.
func (w *Writer) Start(ctx context.Context) {
	go w.run(ctx)
}

// Record enqueues one action. The call blocks only when the buffer is full.
func (w *Writer) Record(action domain.Action) {
	w.ch <- action
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.repo.Append(ctx, &action); err != nil {
				w.log.Warn().Err(err).
					Str("kind", string(action.Kind)).
					Str("actor", string(action.Actor)).
					Msg("failed to persist action")
			}
		}
	}
}
