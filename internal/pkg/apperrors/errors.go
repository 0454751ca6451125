package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/decay"
	"github.com/openfill/fillgate/internal/exclusivity"
	"github.com/openfill/fillgate/internal/fees"
	"github.com/openfill/fillgate/internal/nonce"
	"github.com/openfill/fillgate/internal/permit2"
	"github.com/openfill/fillgate/internal/priority"
	"github.com/openfill/fillgate/internal/resolver"
	"github.com/openfill/fillgate/internal/settlement"
	"github.com/openfill/fillgate/internal/validation"
)

type ErrorType string

const (
	ErrMalformedOrder ErrorType = "MALFORMED_ORDER"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrNonceUsed      ErrorType = "NONCE_USED"
	ErrTiming         ErrorType = "TIMING"
	ErrLiquidity      ErrorType = "LIQUIDITY"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrUpstream       ErrorType = "UPSTREAM_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

// Wrap lifts any error into an AppError, classifying known settlement and
// resolution failures so the HTTP layer never inspects domain errors itself.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(classify(err), err.Error(), err)
}

func classify(err error) ErrorType {
	switch {
	case errors.Is(err, resolver.ErrUnknownOrderType),
		errors.Is(err, resolver.ErrMalformedOrder),
		errors.Is(err, resolver.ErrInvalidAuctionTarget),
		errors.Is(err, decay.ErrEndTimeBeforeStartTime),
		errors.Is(err, decay.ErrDeadlineBeforeEndTime),
		errors.Is(err, decay.ErrInputAndOutputDecay),
		errors.Is(err, decay.ErrIncorrectAmounts),
		errors.Is(err, decay.ErrEmptyCurve),
		errors.Is(err, cosigner.ErrInvalidCosignerInput),
		errors.Is(err, cosigner.ErrInvalidCosignerOutput),
		errors.Is(err, cosigner.ErrOverrideLengthMismatch),
		errors.Is(err, priority.ErrInputOutputScaling),
		errors.Is(err, settlement.ErrWrongReactor),
		errors.Is(err, fees.ErrFeeTooLarge):
		return ErrMalformedOrder
	case errors.Is(err, permit2.ErrInvalidSignature),
		errors.Is(err, cosigner.ErrInvalidCosignature),
		errors.Is(err, cosigner.ErrMissingCosigner),
		errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, exclusivity.ErrNoExclusiveOverride):
		return ErrAuthFailed
	case errors.Is(err, nonce.ErrNonceUsed):
		return ErrNonceUsed
	case errors.Is(err, settlement.ErrDeadlinePassed),
		errors.Is(err, priority.ErrAuctionNotStarted),
		errors.Is(err, priority.ErrInvalidGasPrice):
		return ErrTiming
	case errors.Is(err, permit2.ErrInsufficientBalance):
		return ErrLiquidity
	case errors.Is(err, settlement.ErrEmptyBatch),
		errors.Is(err, settlement.ErrReentrantCall):
		return ErrInvalidRequest
	default:
		return ErrInternal
	}
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrMalformedOrder, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrNonceUsed:
		return http.StatusConflict
	case ErrTiming, ErrLiquidity:
		return http.StatusUnprocessableEntity
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrMalformedOrder:
		return "Check order encoding and decay parameters."
	case ErrNonceUsed:
		return "The order was already filled; request a fresh order."
	case ErrAuthFailed:
		return "Check API keys and signatures."
	case ErrTiming:
		return "Retry when the order window is open."
	case ErrLiquidity:
		return "Fund the filler account and retry."
	default:
		return ""
	}
}
