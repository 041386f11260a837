package domain

import "time"

// VerificationPurpose scopes a verification code to a single flow.
type VerificationPurpose string

const (
	PurposeSignup              VerificationPurpose = "signup"
	PurposePasswordReset       VerificationPurpose = "password-reset"
	PurposeEmailChange         VerificationPurpose = "email-change"
	PurposeDeleteVendorAccount VerificationPurpose = "delete-vendor-account"
)

// VerificationPurposes lists every purpose in a stable order.
var VerificationPurposes = []VerificationPurpose{
	PurposeSignup,
	PurposePasswordReset,
	PurposeEmailChange,
	PurposeDeleteVendorAccount,
}

// ParsePurpose converts a wire value into a known purpose.
func ParsePurpose(value string) (VerificationPurpose, bool) {
	for _, p := range VerificationPurposes {
		if string(p) == value {
			return p, true
		}
	}
	return "", false
}

// VerificationCode is a single-use, time-boxed code delivered by email.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	Purpose   VerificationPurpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// ValidAt reports whether the code can still be redeemed at the given instant.
func (c VerificationCode) ValidAt(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
