package service

import (
	"errors"

	"gorm.io/gorm"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserContextRequired is returned when an operation needs a request user
	ErrUserContextRequired = errors.New("user context required")

	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when an inactive account tries to log in
	ErrAccountInactive = errors.New("account is not active")

	// ErrEmailTaken is returned when registering or inviting an existing email
	ErrEmailTaken = errors.New("email is already in use")

	// ErrInvalidInviteToken is returned when an activation token does not match
	ErrInvalidInviteToken = errors.New("invalid or expired invite token")

	// ErrInvalidStatusTransition is returned for a move the lifecycle table forbids
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrNotATechnician is returned when assigning orders to a non-technician
	ErrNotATechnician = errors.New("employee is not an active technician")

	// ErrInsufficientStock is returned when a sale would overdraw inventory
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrCustomerRequired is returned when an order has neither an existing
	// customer reference nor an inline new customer
	ErrCustomerRequired = errors.New("customer reference or new customer required")
)

// isRecordNotFound unwraps GORM's not-found sentinel
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
