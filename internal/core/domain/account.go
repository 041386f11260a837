package domain

import (
	"strings"
	"time"
)

// Role enumerates the marketplace roles an account can hold.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleVendor
}

// AuthMethodPassword is the only authentication method issued by this service.
const AuthMethodPassword = "password"

// Account mirrors the persisted representation in the accounts table.
// PasswordHash holds either a format-tagged hash or a legacy plaintext value.
type Account struct {
	ID              string
	Email           string
	Name            string
	Phone           *string
	PasswordHash    string
	Role            Role
	VendorID        *string
	AuthMethod      string
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsVendor reports whether the account currently owns a vendor profile.
func (a Account) IsVendor() bool {
	return a.Role == RoleVendor
}

// LinkedVendorID returns the vendor identifier the account is linked to, if any.
func (a Account) LinkedVendorID() (string, bool) {
	if a.VendorID == nil || *a.VendorID == "" {
		return "", false
	}
	return *a.VendorID, true
}

// Vendor is the legacy vendor profile. Password predates the unified accounts table
// and may be empty, plaintext, or a hash kept in sync with the owning account.
type Vendor struct {
	ID           string
	CompanyName  string
	Slug         string
	ContactEmail string
	Password     string
	OwnerID      *string
	CreatedAt    time.Time
}

// CustomerProfile is the customer-side data created at signup.
type CustomerProfile struct {
	UserID    string
	CreatedAt time.Time
}

// NormalizeEmail lowercases and trims an email address for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Slugify derives a URL-safe vendor slug from a company name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PasswordContext supplies user attributes that weak passwords are checked against.
// Current is set only when an authenticated user replaces a known password.
type PasswordContext struct {
	Email   string
	Name    string
	Current string
}
