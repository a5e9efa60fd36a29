package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReconcileSweep is the handler's view of the settlement service's
// reconciliation sweep.
type ReconcileSweep interface {
	ReconcilePendingDisbursements(ctx context.Context, olderThan time.Duration, limit int32) (int, error)
}

// ReconcileHandler handles cron job endpoints for disbursement
// reconciliation
type ReconcileHandler struct {
	sweep      ReconcileSweep
	logger     *zap.Logger
	cronSecret string // Secret token for authenticating cron requests
}

// NewReconcileHandler creates a new reconciliation cron handler
func NewReconcileHandler(sweep ReconcileSweep, logger *zap.Logger, cronSecret string) *ReconcileHandler {
	return &ReconcileHandler{
		sweep:      sweep,
		logger:     logger,
		cronSecret: cronSecret,
	}
}

// ReconcileRequest represents the optional request body
type ReconcileRequest struct {
	OlderThanMinutes *int `json:"older_than_minutes"` // Optional: defaults to 10
	Limit            *int `json:"limit"`              // Optional: defaults to 200
}

// ReconcileResponse represents the response from a reconciliation run
type ReconcileResponse struct {
	Success     bool   `json:"success"`
	Reenqueued  int    `json:"reenqueued"`
	ProcessedAt string `json:"processed_at"`
}

// ReconcileDisbursements handles the POST /cron/reconcile-disbursements
// endpoint. It is called by the scheduler to re-enqueue pending
// distributions whose tasks were lost between commit and enqueue.
func (h *ReconcileHandler) ReconcileDisbursements(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Reconciliation cron job triggered",
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
	)

	if r.Method != http.MethodPost {
		h.respondError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	if !h.authenticateRequest(r) {
		h.logger.Warn("Unauthorized cron request",
			zap.String("remote_addr", r.RemoteAddr),
		)
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReconcileRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Failed to parse request body", zap.Error(err))
			// Continue with defaults if parsing fails
		}
	}

	olderThan := 10 * time.Minute
	if req.OlderThanMinutes != nil {
		if *req.OlderThanMinutes < 1 || *req.OlderThanMinutes > 1440 {
			h.respondError(w, http.StatusBadRequest, "older_than_minutes must be between 1 and 1440")
			return
		}
		olderThan = time.Duration(*req.OlderThanMinutes) * time.Minute
	}

	limit := int32(200)
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > 1000 {
			h.respondError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = int32(*req.Limit)
	}

	reenqueued, err := h.sweep.ReconcilePendingDisbursements(r.Context(), olderThan, limit)
	if err != nil {
		h.logger.Error("Reconciliation sweep failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("reconciliation failed: %v", err))
		return
	}

	h.logger.Info("Reconciliation completed",
		zap.Int("reenqueued", reenqueued),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ReconcileResponse{
		Success:     true,
		Reenqueued:  reenqueued,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// authenticateRequest verifies the cron request is authorized
func (h *ReconcileHandler) authenticateRequest(r *http.Request) bool {
	// Check X-Cron-Secret header
	cronSecret := r.Header.Get("X-Cron-Secret")
	if cronSecret != "" && cronSecret == h.cronSecret {
		return true
	}

	// Check Authorization header (Bearer token)
	authHeader := r.Header.Get("Authorization")
	if authHeader == "Bearer "+h.cronSecret {
		return true
	}

	return false
}

// respondError sends an error response
func (h *ReconcileHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := map[string]interface{}{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
