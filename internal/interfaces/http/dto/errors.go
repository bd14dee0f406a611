package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Session error codes
const (
	// ErrCodeSessionExpired tells the UI to go back to the login screen
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Order desk business rule codes
const (
	ErrCodeInvalidState    = "ERR_INVALID_STATE"
	ErrCodeInvalidStatus   = "ERR_INVALID_STATUS"
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidOrder    = "ERR_INVALID_ORDER"
	ErrCodeUnknownShop     = "ERR_UNKNOWN_SHOP"
	ErrCodeUnknownProduct  = "ERR_UNKNOWN_PRODUCT"
	ErrCodeNoChanges       = "ERR_NO_CHANGES"
	ErrCodeCutoffPassed    = "ERR_ORDER_CUTOFF_PASSED"
	ErrCodeReconcileFailed = "ERR_RECONCILE_FAILED"
	// ErrCodeSnapshotChanged asks the UI to reload the matrix before saving
	ErrCodeSnapshotChanged = "ERR_SNAPSHOT_CHANGED"
)

// Upstream error codes
const (
	// ErrCodeBackend is a 5xx from the order backend
	ErrCodeBackend = "ERR_BACKEND"
	// ErrCodeBackendRejected is a 4xx from the order backend
	ErrCodeBackendRejected    = "ERR_BACKEND_REJECTED"
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeSessionExpired:     http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeInvalidStatus:   http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,
	ErrCodeUnknownShop:     http.StatusBadRequest,
	ErrCodeUnknownProduct:  http.StatusBadRequest,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeInvalidOrder:    http.StatusUnprocessableEntity,
	ErrCodeNoChanges:       http.StatusUnprocessableEntity,
	ErrCodeCutoffPassed:    http.StatusUnprocessableEntity,
	ErrCodeReconcileFailed: http.StatusUnprocessableEntity,
	ErrCodeSnapshotChanged: http.StatusConflict,

	ErrCodeBackend:            http.StatusBadGateway,
	ErrCodeBackendRejected:    http.StatusUnprocessableEntity,
	ErrCodeBackendUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"INVALID_STATUS":      ErrCodeInvalidStatus,
	"INVALID_QUANTITY":    ErrCodeInvalidQuantity,
	"INVALID_ORDER":       ErrCodeInvalidOrder,
	"UNKNOWN_SHOP":        ErrCodeUnknownShop,
	"UNKNOWN_PRODUCT":     ErrCodeUnknownProduct,
	"NO_CHANGES":          ErrCodeNoChanges,
	"ORDER_CUTOFF_PASSED": ErrCodeCutoffPassed,
	"RECONCILE_FAILED":    ErrCodeReconcileFailed,
	"SNAPSHOT_CHANGED":    ErrCodeSnapshotChanged,
	"SESSION_EXPIRED":     ErrCodeSessionExpired,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
