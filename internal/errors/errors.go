package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("resource conflict")
	ErrBadRequest          = errors.New("bad request")
	ErrInternalServer      = errors.New("internal server error")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")

	// Business errors
	ErrQuoteExpired           = errors.New("quote expired")
	ErrFreightAlreadyAssigned = errors.New("freight already assigned")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrDistanceUnavailable    = errors.New("distance unavailable")
)

// APIError represents a structured API error. It unwraps to the sentinel it
// was built from, so errors.Is works across the service boundary.
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.err
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func wrap(sentinel error, code, message string, statusCode int) *APIError {
	e := NewAPIError(code, message, statusCode)
	e.err = sentinel
	return e
}

// Common API errors
func NotFound(resource string) *APIError {
	return wrap(ErrNotFound, "not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return wrap(ErrBadRequest, "bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return wrap(ErrConflict, "conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return wrap(ErrInternalServer, "internal_error", message, http.StatusInternalServerError)
}

func IdempotencyConflict() *APIError {
	return wrap(ErrIdempotencyConflict, "idempotency_conflict", "idempotency key already used with different request", http.StatusConflict)
}

func IncompatibleVehicle(vehicleLabel string, weightKg float64) *APIError {
	return NewAPIError("incompatible_vehicle",
		fmt.Sprintf("%s cannot carry a load of %g kg, choose a larger vehicle", vehicleLabel, weightKg),
		http.StatusUnprocessableEntity)
}

func QuoteExpired() *APIError {
	return wrap(ErrQuoteExpired, "quote_expired", "this quote has expired, request a new one", http.StatusGone)
}

func FreightAlreadyAssigned() *APIError {
	return wrap(ErrFreightAlreadyAssigned, "freight_already_assigned", "this freight has been assigned to another transporter", http.StatusConflict)
}

func InvalidTransition(from, to string) *APIError {
	return wrap(ErrInvalidTransition, "invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusConflict)
}

func DistanceUnavailable() *APIError {
	return wrap(ErrDistanceUnavailable, "distance_unavailable", "could not resolve the trip distance", http.StatusBadGateway)
}

func RateLimitExceeded() *APIError {
	return NewAPIError("rate_limit_exceeded", "too many requests, please try again later", http.StatusTooManyRequests)
}

func RequestInProgress() *APIError {
	return wrap(ErrConflict, "request_in_progress", "a request with this idempotency key is already being processed", http.StatusConflict)
}
