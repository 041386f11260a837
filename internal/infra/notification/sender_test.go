package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
)

type capturingMailer struct {
	messages []*gomail.Message
	err      error
}

func (c *capturingMailer) DialAndSend(m ...*gomail.Message) error {
	c.messages = append(c.messages, m...)
	return c.err
}

func TestSMTPSenderRendersPurpose(t *testing.T) {
	mailer := &capturingMailer{}
	sender := newSMTPSender(mailer, "no-reply@example.com", zaptest.NewLogger(t))

	err := sender.SendVerificationCode(context.Background(), port.VerificationMessage{
		Email:     "ada@example.com",
		Code:      "482913",
		Purpose:   domain.PurposePasswordReset,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("SendVerificationCode: %v", err)
	}
	if len(mailer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(mailer.messages))
	}

	msg := mailer.messages[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ada@example.com" {
		t.Fatalf("unexpected recipient: %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Password reset code" {
		t.Fatalf("unexpected subject: %v", got)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("render message: %v", err)
	}
	if !strings.Contains(buf.String(), "482913") {
		t.Fatalf("expected code in body")
	}
}

func TestSMTPSenderWrapsDeliveryError(t *testing.T) {
	boom := errors.New("connection refused")
	sender := newSMTPSender(&capturingMailer{err: boom}, "no-reply@example.com", zaptest.NewLogger(t))

	err := sender.SendVerificationCode(context.Background(), port.VerificationMessage{
		Email: "ada@example.com", Code: "111111", Purpose: domain.PurposeSignup,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped delivery error, got %v", err)
	}
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	mailer := &capturingMailer{}
	sender := newSMTPSender(mailer, "no-reply@example.com", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.SendVerificationCode(ctx, port.VerificationMessage{Email: "a@b.co", Code: "1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(mailer.messages) != 0 {
		t.Fatalf("no message should be sent")
	}
}

func TestRenderVerificationSubjects(t *testing.T) {
	cases := map[domain.VerificationPurpose]string{
		domain.PurposeSignup:              "Verify your email",
		domain.PurposePasswordReset:       "Password reset code",
		domain.PurposeEmailChange:         "Confirm your new email",
		domain.PurposeDeleteVendorAccount: "Confirm vendor account deletion",
	}
	for purpose, want := range cases {
		subject, body := renderVerification(port.VerificationMessage{Code: "654321", Purpose: purpose})
		if subject != want {
			t.Fatalf("%s: expected subject %q, got %q", purpose, want, subject)
		}
		if !strings.Contains(body, "654321") {
			t.Fatalf("%s: body missing code", purpose)
		}
	}
}

func TestLogSenderMasksEmail(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	if err := sender.SendVerificationCode(context.Background(), port.VerificationMessage{
		Email: "ada@example.com", Code: "123456", Purpose: domain.PurposeSignup,
	}); err != nil {
		t.Fatalf("SendVerificationCode: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] == "ada@example.com" {
		t.Fatalf("email should be masked in logs")
	}
	if fields["code"] != "123456" {
		t.Fatalf("expected code to be logged, got %v", fields["code"])
	}
}

func TestNewCodeSenderFallsBackToLog(t *testing.T) {
	if _, ok := NewCodeSender(config.SMTPSettings{}, zaptest.NewLogger(t)).(*LogSender); !ok {
		t.Fatalf("expected log sender without SMTP host")
	}
	if _, ok := NewCodeSender(config.SMTPSettings{Host: "smtp.example.com", Port: 587}, zaptest.NewLogger(t)).(*SMTPSender); !ok {
		t.Fatalf("expected SMTP sender with host configured")
	}
}
