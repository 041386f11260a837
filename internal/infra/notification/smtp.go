package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
)

type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender mails verification codes through an SMTP relay.
type SMTPSender struct {
	dialer mailer
	from   string
	logger *zap.Logger
}

// NewSMTPSender builds a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPSettings, log *zap.Logger) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newSMTPSender(dialer, formatFrom(cfg), log)
}

func newSMTPSender(dialer mailer, from string, log *zap.Logger) *SMTPSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPSender{dialer: dialer, from: from, logger: log}
}

func formatFrom(cfg config.SMTPSettings) string {
	if cfg.FromName == "" {
		return cfg.From
	}
	return (&mail.Address{Name: cfg.FromName, Address: cfg.From}).String()
}

// SendVerificationCode renders the purpose template and delivers it synchronously.
func (s *SMTPSender) SendVerificationCode(ctx context.Context, msg port.VerificationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body := renderVerification(msg)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Warn("Verification email delivery failed",
			zap.String("email", logger.MaskEmail(msg.Email)),
			zap.String("purpose", string(msg.Purpose)),
			zap.Error(err),
		)
		return fmt.Errorf("send %s verification email: %w", msg.Purpose, err)
	}

	s.logger.Debug("Verification email sent",
		zap.String("email", logger.MaskEmail(msg.Email)),
		zap.String("purpose", string(msg.Purpose)),
	)
	return nil
}

func renderVerification(msg port.VerificationMessage) (string, string) {
	var subject, intro string
	switch msg.Purpose {
	case domain.PurposeSignup:
		subject = "Verify your email"
		intro = "Use this code to finish creating your account."
	case domain.PurposePasswordReset:
		subject = "Password reset code"
		intro = "We received a request to reset your password. Use this code to choose a new one."
	case domain.PurposeEmailChange:
		subject = "Confirm your new email"
		intro = "Use this code to confirm the new email address on your account."
	case domain.PurposeDeleteVendorAccount:
		subject = "Confirm vendor account deletion"
		intro = "Use this code to confirm deleting your store. Your customer account will be kept."
	default:
		subject = "Your verification code"
		intro = "Use this code to continue."
	}

	minutes := 0
	if !msg.ExpiresAt.IsZero() {
		minutes = int(time.Until(msg.ExpiresAt).Round(time.Minute) / time.Minute)
	}
	expiry := ""
	if minutes > 0 {
		expiry = fmt.Sprintf("<p>The code expires in %d minutes.</p>", minutes)
	}

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>%s</p>
		<p><strong style="font-size:20px;letter-spacing:4px">%s</strong></p>
		%s
		<p>If you did not request this, you can ignore this email.</p>
	`, subject, intro, msg.Code, expiry)

	return subject, body
}

var _ port.CodeSender = (*SMTPSender)(nil)
