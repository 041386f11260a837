package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	verificationCodeMin   = 100000
	verificationCodeRange = 900000
)

// GenerateVerificationCode returns a uniformly random six-digit code in [100000, 999999].
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeRange))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+verificationCodeMin), nil
}
