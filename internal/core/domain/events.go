package domain

import "time"

// AccountRegisteredEvent represents the payload for account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Role         Role
	VendorID     *string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AccountClaimedEvent is emitted when a legacy vendor credential materializes an account.
type AccountClaimedEvent struct {
	EventID   string
	UserID    string
	VendorID  string
	ClaimedAt time.Time
}

// CredentialMigratedEvent represents the payload for account.credential.migrated messages.
type CredentialMigratedEvent struct {
	EventID    string
	UserID     string
	Source     CredentialOwner
	MigratedAt time.Time
}

// PasswordChangedEvent represents the payload for account.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Reason    string
}

// EmailChangedEvent represents the payload for account.email.changed messages.
type EmailChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
}

// AccountDeletedEvent represents the payload for account.deleted and vendor.deleted messages.
type AccountDeletedEvent struct {
	EventID   string
	UserID    string
	VendorID  *string
	DeletedAt time.Time
	// VendorOnly is set when only the vendor profile was removed and the account was demoted.
	VendorOnly bool
}
