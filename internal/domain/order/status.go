package order

import (
	"fmt"
	"strings"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
)

// Status represents where an order is in the delivery pipeline
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusPreparing Status = "PREPARING"
	StatusOnWay     Status = "ON_WAY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses returns every status in pipeline order
func AllStatuses() []Status {
	return []Status{StatusWaiting, StatusPreparing, StatusOnWay, StatusDelivered, StatusCancelled}
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusPreparing, StatusOnWay, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the pipeline normally ends at s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// Operators may move an order between any two states, including out of a
// terminal one, to correct mistakes.
func (s Status) CanTransitionTo(target Status) bool {
	return s.IsValid() && target.IsValid()
}

// ParseStatus converts a raw value into a Status. Matching is case-insensitive.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("unknown order status %q", raw))
	}
	return s, nil
}

// PlanApproval decides what approving an order in state s requires.
// WAITING needs a write to PREPARING, PREPARING is already approved and needs
// nothing, every other state rejects the approval.
func PlanApproval(s Status) (needsWrite bool, err error) {
	switch s {
	case StatusWaiting:
		return true, nil
	case StatusPreparing:
		return false, nil
	}
	return false, shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("cannot approve order in %s status", s))
}
