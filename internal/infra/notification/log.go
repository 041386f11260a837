package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
)

// LogSender writes codes to the log. Used for local development when SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{logger: log}
}

func (s *LogSender) SendVerificationCode(ctx context.Context, msg port.VerificationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("Verification code issued",
		zap.String("email", logger.MaskEmail(msg.Email)),
		zap.String("purpose", string(msg.Purpose)),
		zap.String("code", msg.Code),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// NewCodeSender picks SMTP delivery when a host is configured and falls back to logging.
func NewCodeSender(cfg config.SMTPSettings, log *zap.Logger) port.CodeSender {
	if cfg.Host == "" {
		if log != nil {
			log.Warn("SMTP host not configured, verification codes will be logged")
		}
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg, log)
}

var _ port.CodeSender = (*LogSender)(nil)
