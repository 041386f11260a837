package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

func TestIssueInvalidatesEarlierCodes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.ledger.Issue(ctx, "Jane@Example.com", domain.PurposeSignup)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	if first.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %q", first.Email)
	}

	h.clock.Advance(61 * time.Second)
	second, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposeSignup)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	ok, err := h.ledger.Redeem(ctx, "jane@example.com", first.Code, domain.PurposeSignup)
	if err != nil || ok {
		t.Fatalf("expected earlier code to be rejected, ok=%v err=%v", ok, err)
	}
	ok, err = h.ledger.Redeem(ctx, "jane@example.com", second.Code, domain.PurposeSignup)
	if err != nil || !ok {
		t.Fatalf("expected latest code to redeem, ok=%v err=%v", ok, err)
	}
	if got := h.sender.last(); got.Code != second.Code || got.Email != "jane@example.com" {
		t.Fatalf("unexpected dispatched message %+v", got)
	}
}

func TestIssueEnforcesCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposePasswordReset); err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposePasswordReset)
	var rlErr *RateLimitedError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rlErr.Seconds() != 60 {
		t.Fatalf("expected 60 seconds remaining, got %d", rlErr.Seconds())
	}

	h.clock.Advance(20*time.Second + 500*time.Millisecond)
	_, err = h.ledger.Issue(ctx, "jane@example.com", domain.PurposePasswordReset)
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rlErr.Seconds() != 40 {
		t.Fatalf("expected remaining time rounded up to 40, got %d", rlErr.Seconds())
	}

	if _, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposeSignup); err != nil {
		t.Fatalf("expected other purpose to be unaffected, got %v", err)
	}
	if h.metrics.cooldowns != 2 {
		t.Fatalf("expected two cooldown observations, got %d", h.metrics.cooldowns)
	}
}

func TestRedeemRejectsExpiredCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	code, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposeEmailChange)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	h.clock.Advance(15 * time.Minute)
	ok, err := h.ledger.Redeem(ctx, "jane@example.com", code.Code, domain.PurposeEmailChange)
	if err != nil || ok {
		t.Fatalf("expected expired code to fail, ok=%v err=%v", ok, err)
	}
	if stored := h.store.codesFor("jane@example.com", domain.PurposeEmailChange); len(stored) != 1 || stored[0].Used {
		t.Fatalf("expected failed redemption to leave the record untouched, got %+v", stored)
	}
}

func TestRedeemIsSingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	code, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposeSignup)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if ok, _ := h.ledger.Redeem(ctx, "jane@example.com", code.Code, domain.PurposePasswordReset); ok {
		t.Fatalf("expected purpose mismatch to fail")
	}
	if ok, _ := h.ledger.Redeem(ctx, "jane@example.com", code.Code, domain.PurposeSignup); !ok {
		t.Fatalf("expected first redemption to succeed")
	}
	if ok, _ := h.ledger.Redeem(ctx, "jane@example.com", code.Code, domain.PurposeSignup); ok {
		t.Fatalf("expected second redemption to fail")
	}
}

func TestIssueRetiresUndeliveredCode(t *testing.T) {
	h := newHarness(t)
	h.sender.err = errors.New("smtp down")

	_, err := h.ledger.Issue(context.Background(), "jane@example.com", domain.PurposeSignup)
	if !errors.Is(err, ErrCodeDeliveryFailed) {
		t.Fatalf("expected ErrCodeDeliveryFailed, got %v", err)
	}
	if stored := h.store.codesFor("jane@example.com", domain.PurposeSignup); len(stored) != 0 {
		t.Fatalf("expected undelivered code to be removed, got %+v", stored)
	}
	if h.metrics.issued != 0 {
		t.Fatalf("expected no issued observation, got %d", h.metrics.issued)
	}
}

func TestCheckAndConsume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	code, err := h.ledger.Issue(ctx, "jane@example.com", domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := h.ledger.Check(ctx, "jane@example.com", "000000", domain.PurposePasswordReset); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for wrong code, got %v", err)
	}

	record, err := h.ledger.Check(ctx, " JANE@example.com ", code.Code, domain.PurposePasswordReset)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if stored := h.store.codesFor("jane@example.com", domain.PurposePasswordReset); stored[0].Used {
		t.Fatalf("expected check to leave the code unused")
	}

	codes := h.store.Repositories().Codes
	if err := h.ledger.Consume(ctx, codes, record); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := h.ledger.Consume(ctx, codes, record); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected second consume to fail, got %v", err)
	}
}

func TestReclaimRemovesCodesPastGrace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.ledger.Issue(ctx, "old@example.com", domain.PurposeSignup); err != nil {
		t.Fatalf("issue: %v", err)
	}
	h.clock.Advance(30 * time.Minute)
	if _, err := h.ledger.Issue(ctx, "new@example.com", domain.PurposeSignup); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// old expired at +15m, new at +45m; at +76m only old is past the one hour grace.
	h.clock.Advance(46 * time.Minute)
	removed, err := h.ledger.Reclaim(ctx)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one reclaimed code, got %d", removed)
	}
	if len(h.store.codesFor("new@example.com", domain.PurposeSignup)) != 1 {
		t.Fatalf("expected recent code to be retained")
	}
}

func TestVerificationJanitorStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	janitor := NewVerificationJanitor(h.ledger, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop after cancellation")
	}
}

func TestRateLimitedErrorSeconds(t *testing.T) {
	cases := []struct {
		retry time.Duration
		want  int
	}{
		{retry: 0, want: 1},
		{retry: 200 * time.Millisecond, want: 1},
		{retry: 59*time.Second + time.Millisecond, want: 60},
		{retry: 2 * time.Minute, want: 60},
	}
	for _, tc := range cases {
		err := &RateLimitedError{RetryAfter: tc.retry, Window: time.Minute}
		if got := err.Seconds(); got != tc.want {
			t.Fatalf("Seconds(%s) = %d, want %d", tc.retry, got, tc.want)
		}
	}
}
