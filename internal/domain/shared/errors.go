package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies with a
// more specific message still match the sentinel values below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidStatus   = NewDomainError("INVALID_STATUS", "Unknown order status")
	ErrInvalidQuantity = NewDomainError("INVALID_QUANTITY", "Quantity must not be negative")
	ErrUnknownShop     = NewDomainError("UNKNOWN_SHOP", "Shop is not part of the order history")
	ErrUnknownProduct  = NewDomainError("UNKNOWN_PRODUCT", "Product is not in the catalog")
	ErrNoChanges       = NewDomainError("NO_CHANGES", "No changes to save")
	ErrCutoffPassed    = NewDomainError("ORDER_CUTOFF_PASSED", "Orders for today are closed")
	ErrSessionExpired  = NewDomainError("SESSION_EXPIRED", "Session expired, please log in again")
)

// Errors surfaced by the order desk workflows
var (
	ErrReconcileFailed    = NewDomainError("RECONCILE_FAILED", "Some target updates could not be saved")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrInvalidOrder       = NewDomainError("INVALID_ORDER", "Order violates its pricing invariants")
	ErrSnapshotChanged    = NewDomainError("SNAPSHOT_CHANGED", "The matrix changed since it was loaded, reload it")
)
