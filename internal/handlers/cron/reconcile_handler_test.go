package cron

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweep struct {
	reenqueued int
	err        error

	olderThan time.Duration
	limit     int32
	calls     int
}

func (f *fakeSweep) ReconcilePendingDisbursements(ctx context.Context, olderThan time.Duration, limit int32) (int, error) {
	f.calls++
	f.olderThan = olderThan
	f.limit = limit
	return f.reenqueued, f.err
}

func newHandlerTest(sweep *fakeSweep) *ReconcileHandler {
	return NewReconcileHandler(sweep, zap.NewNop(), "test-secret")
}

func doRequest(h *ReconcileHandler, method, secret string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader([]byte{})
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, "/cron/reconcile-disbursements", reader)
	if secret != "" {
		req.Header.Set("X-Cron-Secret", secret)
	}
	w := httptest.NewRecorder()
	h.ReconcileDisbursements(w, req)
	return w
}

func TestReconcileDisbursements_Success(t *testing.T) {
	sweep := &fakeSweep{reenqueued: 3}
	h := newHandlerTest(sweep)

	w := doRequest(h, http.MethodPost, "test-secret", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReconcileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Reenqueued)

	// Defaults applied when no body is sent
	assert.Equal(t, 10*time.Minute, sweep.olderThan)
	assert.Equal(t, int32(200), sweep.limit)
}

func TestReconcileDisbursements_CustomParameters(t *testing.T) {
	sweep := &fakeSweep{}
	h := newHandlerTest(sweep)

	body, _ := json.Marshal(map[string]int{"older_than_minutes": 30, "limit": 50})
	w := doRequest(h, http.MethodPost, "test-secret", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30*time.Minute, sweep.olderThan)
	assert.Equal(t, int32(50), sweep.limit)
}

func TestReconcileDisbursements_ParameterBounds(t *testing.T) {
	tests := []struct {
		name string
		body map[string]int
	}{
		{"older_than too small", map[string]int{"older_than_minutes": 0}},
		{"older_than too large", map[string]int{"older_than_minutes": 1441}},
		{"limit too small", map[string]int{"limit": 0}},
		{"limit too large", map[string]int{"limit": 1001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweep := &fakeSweep{}
			h := newHandlerTest(sweep)

			body, _ := json.Marshal(tt.body)
			w := doRequest(h, http.MethodPost, "test-secret", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, sweep.calls)
		})
	}
}

func TestReconcileDisbursements_Unauthorized(t *testing.T) {
	sweep := &fakeSweep{}
	h := newHandlerTest(sweep)

	w := doRequest(h, http.MethodPost, "wrong-secret", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(h, http.MethodPost, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, 0, sweep.calls)
}

func TestReconcileDisbursements_BearerTokenAccepted(t *testing.T) {
	sweep := &fakeSweep{}
	h := newHandlerTest(sweep)

	req := httptest.NewRequest(http.MethodPost, "/cron/reconcile-disbursements", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer test-secret")
	w := httptest.NewRecorder()
	h.ReconcileDisbursements(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sweep.calls)
}

func TestReconcileDisbursements_MethodNotAllowed(t *testing.T) {
	sweep := &fakeSweep{}
	h := newHandlerTest(sweep)

	w := doRequest(h, http.MethodGet, "test-secret", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 0, sweep.calls)
}

func TestReconcileDisbursements_SweepFailure(t *testing.T) {
	sweep := &fakeSweep{err: assert.AnError}
	h := newHandlerTest(sweep)

	w := doRequest(h, http.MethodPost, "test-secret", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
