package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/kurniadi/booking-service/internal/domain/ports"
	"github.com/kurniadi/booking-service/pkg/observability"
)

// ReconcilePendingDisbursements re-enqueues disbursement tasks for
// pending distributions older than olderThan. It closes the crash
// window between the settlement commit and the post-commit enqueue:
// a distribution that is still pending after the grace period either
// lost its task or its task keeps failing before reaching the worker.
//
// Re-enqueueing an already-queued distribution is harmless; the worker
// re-checks state before paying out.
func (s *Service) ReconcilePendingDisbursements(ctx context.Context, olderThan time.Duration, limit int32) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	pending, err := s.distributions.ListPendingNeedingDisbursement(ctx, nil, cutoff, limit)
	if err != nil {
		observability.RecordReconciliationRun("failed", 0)
		return 0, fmt.Errorf("list pending distributions: %w", err)
	}

	enqueued := 0
	for _, dist := range pending {
		if err := s.queue.Enqueue(ctx, dist.ID); err != nil {
			s.logger.Error("reconciliation enqueue failed",
				ports.String("distribution_id", dist.ID.String()),
				ports.Err(err))
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("reconciliation sweep re-enqueued distributions",
			ports.Int("found", len(pending)),
			ports.Int("enqueued", enqueued))
	}

	observability.RecordReconciliationRun("success", enqueued)
	return enqueued, nil
}
