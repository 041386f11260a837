package port

import (
	"context"
	"time"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

// VerificationMessage carries the data needed to deliver a verification code.
type VerificationMessage struct {
	Email     string
	Code      string
	Purpose   domain.VerificationPurpose
	ExpiresAt time.Time
}

// CodeSender delivers verification codes out of band.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, msg VerificationMessage) error
}
