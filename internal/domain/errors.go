package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Reservation errors (RESERVATION_*)
	ErrorCodeReservationNotFound      ErrorCode = "RESERVATION_NOT_FOUND"
	ErrorCodeReservationNotModifiable ErrorCode = "RESERVATION_NOT_MODIFIABLE"
	ErrorCodeReservationBadTransition ErrorCode = "RESERVATION_INVALID_TRANSITION"

	// Item errors (ITEM_*)
	ErrorCodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// Settlement errors (SETTLEMENT_*)
	ErrorCodeSettlementFailed ErrorCode = "SETTLEMENT_FAILED"

	// Disbursement errors (DISBURSEMENT_*)
	ErrorCodeDisbursementNotFound    ErrorCode = "DISBURSEMENT_NOT_FOUND"
	ErrorCodeDisbursementNoBank      ErrorCode = "DISBURSEMENT_NO_BANK_ACCOUNT"
	ErrorCodeDisbursementProvider    ErrorCode = "DISBURSEMENT_PROVIDER_ERROR"
	ErrorCodeDisbursementTransport   ErrorCode = "DISBURSEMENT_TRANSPORT_ERROR"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Common domain errors
var (
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrReservationNotModifiable = errors.New("reservation can no longer be modified")
	ErrInvalidStatusTransition  = errors.New("invalid reservation status transition")

	ErrItemNotFound = errors.New("reservation item not found")

	ErrDistributionNotFound = errors.New("distribution not found")
	ErrNoBankAccount        = errors.New("no bank account configured for recipient")

	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
)
