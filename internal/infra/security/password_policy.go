package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
)

const (
	defaultMinPasswordLength = 6
	maxStrengthScore         = 4
)

// Violation codes reported by PasswordPolicy.
const (
	ViolationMinLength        = "min_length"
	ViolationCharacterClasses = "character_classes"
	ViolationReused           = "reused"
	ViolationWeak             = "weak_password"
)

// PasswordViolation is the first rule a candidate password failed.
type PasswordViolation struct {
	Code    string
	Message string
}

func (v *PasswordViolation) Error() string {
	return v.Message
}

// PasswordPolicyOptions tunes the rules applied to new passwords.
// Zero values disable the character class and strength checks.
type PasswordPolicyOptions struct {
	MinLength           int
	MinCharacterClasses int
	MinStrengthScore    int
}

type passwordRule func(password string, pctx domain.PasswordContext) *PasswordViolation

// PasswordPolicy validates new passwords for signup, reset and change flows.
type PasswordPolicy struct {
	rules []passwordRule
}

// NewPasswordPolicy builds the rule chain. Only the length rule is always on.
func NewPasswordPolicy(opts PasswordPolicyOptions) *PasswordPolicy {
	if opts.MinLength <= 0 {
		opts.MinLength = defaultMinPasswordLength
	}

	rules := []passwordRule{minLength(opts.MinLength), differentFromCurrent}
	if opts.MinCharacterClasses > 0 {
		rules = append(rules, characterClasses(opts.MinCharacterClasses))
	}
	if opts.MinStrengthScore > 0 {
		rules = append(rules, strength(min(opts.MinStrengthScore, maxStrengthScore)))
	}
	return &PasswordPolicy{rules: rules}
}

// Validate returns a *PasswordViolation for the first failing rule.
func (p *PasswordPolicy) Validate(password string, pctx domain.PasswordContext) error {
	if p == nil {
		return fmt.Errorf("password policy not configured")
	}
	for _, rule := range p.rules {
		if v := rule(password, pctx); v != nil {
			return v
		}
	}
	return nil
}

func minLength(n int) passwordRule {
	return func(password string, _ domain.PasswordContext) *PasswordViolation {
		if len([]rune(password)) < n {
			return &PasswordViolation{
				Code:    ViolationMinLength,
				Message: fmt.Sprintf("password must be at least %d characters long", n),
			}
		}
		return nil
	}
}

func differentFromCurrent(password string, pctx domain.PasswordContext) *PasswordViolation {
	if pctx.Current != "" && password == pctx.Current {
		return &PasswordViolation{
			Code:    ViolationReused,
			Message: "new password must be different from current password",
		}
	}
	return nil
}

// characterClasses counts upper, lower, digit and symbol classes.
func characterClasses(n int) passwordRule {
	return func(password string, _ domain.PasswordContext) *PasswordViolation {
		var upper, lower, digit, symbol bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				symbol = true
			}
		}

		classes := 0
		for _, present := range []bool{upper, lower, digit, symbol} {
			if present {
				classes++
			}
		}
		if classes < n {
			return &PasswordViolation{
				Code:    ViolationCharacterClasses,
				Message: fmt.Sprintf("password must include at least %d character types", n),
			}
		}
		return nil
	}
}

// strength scores the password with zxcvbn, penalising the account's own email and name.
func strength(minScore int) passwordRule {
	return func(password string, pctx domain.PasswordContext) *PasswordViolation {
		if zxcvbn.PasswordStrength(password, userInputs(pctx)).Score >= minScore {
			return nil
		}
		return &PasswordViolation{
			Code:    ViolationWeak,
			Message: "password is too weak; choose a more complex value",
		}
	}
}

func userInputs(pctx domain.PasswordContext) []string {
	inputs := make([]string, 0, 4)
	if email := strings.TrimSpace(pctx.Email); email != "" {
		inputs = append(inputs, email)
		if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
			inputs = append(inputs, local)
		}
	}
	inputs = append(inputs, strings.Fields(pctx.Name)...)
	return inputs
}

var _ port.PasswordPolicyValidator = (*PasswordPolicy)(nil)
