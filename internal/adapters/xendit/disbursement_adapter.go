package xendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// DisbursementAdapter implements DisbursementGateway for the Xendit
// Disbursement API. The provider deduplicates on external_id, so
// resubmitting the same request after a crash or timeout is safe.
type DisbursementAdapter struct {
	baseURL    string
	apiKey     string
	httpClient ports.HTTPClient
	limiter    *rate.Limiter
	logger     ports.Logger
}

// NewDisbursementAdapter creates a new Xendit disbursement adapter with
// dependency injection. requestsPerSecond caps outbound calls to stay
// under the provider's rate limit.
func NewDisbursementAdapter(baseURL, apiKey string, requestsPerSecond float64, httpClient ports.HTTPClient, logger ports.Logger) *DisbursementAdapter {
	return &DisbursementAdapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}
}

type createDisbursementBody struct {
	ExternalID        string `json:"external_id"`
	BankCode          string `json:"bank_code"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	Amount            int64  `json:"amount"`
	Description       string `json:"description,omitempty"`
}

type disbursementResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// CreateDisbursement implements DisbursementGateway.CreateDisbursement.
// A 4xx rejection is returned as a structured failure; network errors
// and 5xx responses are returned as errors so the caller can retry.
func (a *DisbursementAdapter) CreateDisbursement(ctx context.Context, req *ports.CreateDisbursementRequest) (*ports.DisbursementResult, error) {
	if req.BankCode == "" || req.AccountNumber == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "bank code and account number are required")
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDisbursementTransport, "rate limiter wait interrupted", err)
	}

	body, err := json.Marshal(createDisbursementBody{
		ExternalID:        req.ExternalID,
		BankCode:          req.BankCode,
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		Amount:            req.Amount,
		Description:       req.Description,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "failed to encode disbursement request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/disbursements", bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "failed to build disbursement request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Xendit uses basic auth with the API key as the username.
	httpReq.SetBasicAuth(a.apiKey, "")

	a.logger.Info("Creating disbursement",
		ports.String("external_id", req.ExternalID),
		ports.String("bank_code", req.BankCode),
		ports.Int64("amount", req.Amount),
	)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDisbursementTransport, "disbursement request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDisbursementTransport, "failed to read disbursement response", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var out disbursementResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDisbursementTransport, "failed to decode disbursement response", err)
		}

		a.logger.Info("Disbursement accepted",
			ports.String("external_id", req.ExternalID),
			ports.String("disbursement_id", out.ID),
			ports.String("status", out.Status),
		)

		return &ports.DisbursementResult{
			Success:        true,
			DisbursementID: out.ID,
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The provider rejected the payout. This is a business
		// outcome, not an error: the caller records the failure
		// instead of retrying.
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			errResp.ErrorCode = fmt.Sprintf("HTTP_%d", resp.StatusCode)
			errResp.Message = string(respBody)
		}

		a.logger.Warn("Disbursement rejected by provider",
			ports.String("external_id", req.ExternalID),
			ports.String("error_code", errResp.ErrorCode),
			ports.String("message", errResp.Message),
		)

		reason := errResp.ErrorCode
		if errResp.Message != "" {
			reason = fmt.Sprintf("%s: %s", errResp.ErrorCode, errResp.Message)
		}
		return &ports.DisbursementResult{
			Success:       false,
			FailureReason: reason,
		}, nil

	default:
		return nil, domain.NewDomainError(domain.ErrorCodeDisbursementTransport,
			fmt.Sprintf("disbursement provider returned status %d", resp.StatusCode))
	}
}
