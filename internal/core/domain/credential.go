package domain

// CredentialKind classifies a stored credential value.
type CredentialKind int

const (
	CredentialAbsent CredentialKind = iota
	CredentialLegacyPlaintext
	CredentialHashed
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialHashed:
		return "hashed"
	case CredentialLegacyPlaintext:
		return "legacy_plaintext"
	default:
		return "absent"
	}
}

// CredentialOwner identifies which table a credential lives in.
type CredentialOwner string

const (
	CredentialOwnerAccount CredentialOwner = "account"
	CredentialOwnerVendor  CredentialOwner = "vendor"
)

// CredentialRef addresses a single stored credential.
type CredentialRef struct {
	Owner CredentialOwner
	ID    string
}

// AccountCredential references the credential stored on an account.
func AccountCredential(id string) CredentialRef {
	return CredentialRef{Owner: CredentialOwnerAccount, ID: id}
}

// VendorCredential references the legacy credential stored on a vendor profile.
func VendorCredential(id string) CredentialRef {
	return CredentialRef{Owner: CredentialOwnerVendor, ID: id}
}

// CredentialVerification is the outcome of checking a password against a stored credential.
// Migrate is set when the stored value matched as legacy plaintext and must be rehashed.
type CredentialVerification struct {
	Kind    CredentialKind
	Match   bool
	Migrate bool
}
