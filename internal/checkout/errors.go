package checkout

import (
	"errors"
	"strings"
)

var ErrSubmissionInFlight = errors.New("an order is already being submitted")

// EmptyCartError rejects a checkout with no lines.
type EmptyCartError struct{}

func (EmptyCartError) Error() string {
	return "your cart is empty"
}

// UnavailableItemsError rejects a checkout whose lines refer to items that can no longer be ordered.
type UnavailableItemsError struct {
	Names []string
}

func (e *UnavailableItemsError) Error() string {
	return "some items are no longer available: " + strings.Join(e.Names, ", ")
}

// IsValidationError reports whether err rejected the cart itself rather than the submission.
func IsValidationError(err error) bool {
	var empty EmptyCartError
	var unavailable *UnavailableItemsError
	return errors.As(err, &empty) || errors.As(err, &unavailable)
}
