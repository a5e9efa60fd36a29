package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Settlement metrics
	settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Total number of reservation settlement runs",
	}, []string{
		"tenant_id",
		"outcome", // settled, already_settled, failed
	})

	settlementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Time to settle a reservation end-to-end",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{
		"outcome",
	})

	distributionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distributions_created_total",
		Help: "Total settlement distributions created",
	}, []string{
		"tenant_id",
		"recipient_type", // merchant, partner, platform
	})

	distributionAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_amount_minor_units_total",
		Help: "Total distributed amount in minor currency units",
	}, []string{
		"tenant_id",
		"recipient_type",
		"currency",
	})

	// Disbursement metrics
	disbursementAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "disbursement_attempts_total",
		Help: "Total disbursement worker attempts by outcome",
	}, []string{
		"recipient_type",
		"outcome", // completed, no_bank_account, provider_failed, transport_error, skipped
	})

	disbursementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "disbursement_duration_seconds",
		Help:    "Time to process one disbursement including the provider call",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"outcome",
	})

	// Reconciliation metrics
	reconciliationReenqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_reenqueued_total",
		Help: "Pending distributions re-enqueued by the reconciliation sweep",
	})

	reconciliationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_runs_total",
		Help: "Reconciliation sweep runs by outcome",
	}, []string{
		"outcome", // success, failed
	})
)

// RecordSettlement records one settlement run.
func RecordSettlement(tenantID, outcome string, durationSeconds float64) {
	settlementsTotal.WithLabelValues(tenantID, outcome).Inc()
	settlementDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordDistributionCreated records a created distribution and its amount.
func RecordDistributionCreated(tenantID, recipientType, currency string, amountMinorUnits int64) {
	distributionsCreatedTotal.WithLabelValues(tenantID, recipientType).Inc()
	if amountMinorUnits > 0 {
		distributionAmountTotal.WithLabelValues(tenantID, recipientType, currency).Add(float64(amountMinorUnits))
	}
}

// RecordDisbursementAttempt records one worker attempt outcome.
func RecordDisbursementAttempt(recipientType, outcome string, durationSeconds float64) {
	disbursementAttemptsTotal.WithLabelValues(recipientType, outcome).Inc()
	disbursementDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordReconciliationRun records a sweep run and how many tasks it re-enqueued.
func RecordReconciliationRun(outcome string, reenqueued int) {
	reconciliationRunsTotal.WithLabelValues(outcome).Inc()
	if reenqueued > 0 {
		reconciliationReenqueuedTotal.Add(float64(reenqueued))
	}
}
