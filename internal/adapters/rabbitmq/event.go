// Package rabbitmq provides the broker-backed disbursement task queue.
package rabbitmq

import "time"

// DisbursementQueueName is the durable queue carrying disbursement
// tasks from the settlement engine to the payout worker.
const DisbursementQueueName = "settlement.disbursements"

// DisbursementRequestedEvent is the message published when a
// distribution is ready to be paid out. The payload carries only the
// distribution identifier; the worker re-reads the row so stale
// messages for already-handled distributions are harmless.
type DisbursementRequestedEvent struct {
	DistributionID string    `json:"distribution_id"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}
