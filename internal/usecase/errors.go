package usecase

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidInput indicates a request is missing required fields or carries malformed values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidEmail indicates the email address is missing or malformed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidCredentials indicates the email or password is incorrect. It never reveals which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword indicates the new password does not satisfy the password policy.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrUnknownPurpose indicates the verification type is not recognised.
	ErrUnknownPurpose = errors.New("unknown verification type")
	// ErrInvalidCode indicates the verification code is wrong, expired or already used.
	ErrInvalidCode = errors.New("verification code invalid or expired")
	// ErrEmailTaken indicates the email already belongs to an account or vendor.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSlugTaken indicates the vendor slug derived from the company name is in use.
	ErrSlugTaken = errors.New("company name already taken")
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNotVendor indicates a vendor-only operation was attempted by a non-vendor account.
	ErrNotVendor = errors.New("account is not a vendor")
	// ErrCodeDeliveryFailed indicates the verification code could not be dispatched.
	ErrCodeDeliveryFailed = errors.New("verification code delivery failed")
)

// RateLimitedError is returned when a verification code was issued too recently.
type RateLimitedError struct {
	RetryAfter time.Duration
	Window     time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("verification code requested too soon, retry in %ds", e.Seconds())
}

// Seconds reports the wait time rounded up to whole seconds and clamped to [1, window].
func (e *RateLimitedError) Seconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if limit := int(math.Ceil(e.Window.Seconds())); limit > 0 && secs > limit {
		secs = limit
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
