package usecase

import (
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/security"
)

type harness struct {
	store    *memStore
	sender   *recordingSender
	clock    *testClock
	hasher   *security.CredentialHasher
	metrics  *recordingMetrics
	events   *recordingPublisher
	ledger   *VerificationLedger
	resolver *AccountResolver
	auth     *AuthService
	accounts *AccountService

	codeSeq int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	hasher, err := security.NewCredentialHasher(
		security.WithAlgorithm(security.AlgorithmBcrypt),
		security.WithBcryptCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	h := &harness{
		store:   newMemStore(),
		sender:  &recordingSender{},
		clock:   newTestClock(),
		hasher:  hasher,
		metrics: newRecordingMetrics(),
		events:  &recordingPublisher{},
	}
	log := zaptest.NewLogger(t)
	policy := security.NewPasswordPolicy(security.PasswordPolicyOptions{})

	h.ledger = NewVerificationLedger(h.store, h.sender, LedgerOptions{})
	h.ledger.WithClock(h.clock.Now)
	h.ledger.WithLogger(log)
	h.ledger.WithMetrics(h.metrics)
	h.ledger.WithCodeGenerator(func() (string, error) {
		h.codeSeq++
		return fmt.Sprintf("%06d", 100000+h.codeSeq), nil
	})

	h.resolver = NewAccountResolver(h.store, hasher)
	h.resolver.WithClock(h.clock.Now)
	h.resolver.WithLogger(log)
	h.resolver.WithMetrics(h.metrics)
	h.resolver.WithEvents(h.events)

	h.auth = NewAuthService(h.store, h.ledger, h.resolver, hasher, policy)
	h.auth.WithClock(h.clock.Now)
	h.auth.WithLogger(log)
	h.auth.WithEvents(h.events)

	h.accounts = NewAccountService(h.store, h.ledger, h.resolver, hasher, policy)
	h.accounts.WithClock(h.clock.Now)
	h.accounts.WithLogger(log)
	h.accounts.WithEvents(h.events)

	return h
}

func (h *harness) mustHash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := h.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hashed
}
