package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/domain"
)

func seedVendorAccount(t *testing.T, h *harness) {
	t.Helper()
	hashed := h.mustHash(t, "secret1")
	h.store.addAccount(domain.Account{
		ID:           "acc-1",
		Email:        "shop@example.com",
		Name:         "Shop",
		PasswordHash: hashed,
		Role:         domain.RoleVendor,
		VendorID:     strPtr("ven-1"),
	})
	h.store.addVendor(domain.Vendor{
		ID:           "ven-1",
		CompanyName:  "Shop",
		Slug:         "shop",
		ContactEmail: "shop@example.com",
		Password:     hashed,
		OwnerID:      strPtr("acc-1"),
	})
}

func TestDeleteVendorAccountDemotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seedVendorAccount(t, h)

	code := sendAndCapture(t, h, SendCodeInput{Purpose: "delete-vendor-account", UserID: "acc-1"})

	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "acc-1", Code: "000000"}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "acc-1", Code: code}); err != nil {
		t.Fatalf("delete vendor account: %v", err)
	}

	account := h.store.account("acc-1")
	if account.Role != domain.RoleCustomer || account.VendorID != nil {
		t.Fatalf("expected account to be demoted, got %+v", account)
	}
	if _, ok := h.store.state.vendors["ven-1"]; ok {
		t.Fatalf("expected vendor profile to be removed")
	}
	if _, ok := h.store.state.customers["acc-1"]; !ok {
		t.Fatalf("expected customer profile to exist after demotion")
	}
	if len(h.store.state.catalogDeletes) != 1 || h.store.state.catalogDeletes[0] != "ven-1" {
		t.Fatalf("expected vendor catalog to be deleted, got %v", h.store.state.catalogDeletes)
	}
	if len(h.events.deleted) != 1 || !h.events.deleted[0].VendorOnly {
		t.Fatalf("expected vendor-only deletion event")
	}

	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "acc-1", Code: code}); !errors.Is(err, ErrNotVendor) {
		t.Fatalf("expected ErrNotVendor after demotion, got %v", err)
	}
}

func TestDeleteVendorAccountValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.store.addAccount(domain.Account{ID: "cust-1", Email: "cust@example.com", Role: domain.RoleCustomer})

	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "cust-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "missing", Code: "123456"}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "cust-1", Code: "123456"}); !errors.Is(err, ErrNotVendor) {
		t.Fatalf("expected ErrNotVendor, got %v", err)
	}
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seedVendorAccount(t, h)
	h.store.state.customers["acc-1"] = domain.CustomerProfile{UserID: "acc-1"}
	if _, err := h.ledger.Issue(ctx, "shop@example.com", domain.PurposePasswordReset); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := h.accounts.DeleteAccount(ctx, "acc-1"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	st := h.store.state
	if len(st.accounts) != 0 || len(st.vendors) != 0 || len(st.customers) != 0 || len(st.codes) != 0 {
		t.Fatalf("expected all owned records to be removed, got accounts=%d vendors=%d customers=%d codes=%d",
			len(st.accounts), len(st.vendors), len(st.customers), len(st.codes))
	}
	if len(st.customerWipes) != 1 || len(st.catalogDeletes) != 1 {
		t.Fatalf("expected marketplace cleanup, got wipes=%v catalogs=%v", st.customerWipes, st.catalogDeletes)
	}

	if err := h.accounts.DeleteAccount(ctx, "acc-1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := h.accounts.DeleteAccount(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seedVendorAccount(t, h)

	if err := h.accounts.ChangePassword(ctx, ChangePasswordInput{UserID: "acc-1", CurrentPassword: "wrong", NewPassword: "newsecret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := h.accounts.ChangePassword(ctx, ChangePasswordInput{UserID: "acc-1", CurrentPassword: "secret1", NewPassword: "new"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := h.accounts.ChangePassword(ctx, ChangePasswordInput{UserID: "acc-1", CurrentPassword: "secret1", NewPassword: "secret1"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected reuse of the current password to be rejected, got %v", err)
	}
	if err := h.accounts.ChangePassword(ctx, ChangePasswordInput{UserID: "missing", CurrentPassword: "secret1", NewPassword: "newsecret"}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := h.accounts.ChangePassword(ctx, ChangePasswordInput{UserID: "acc-1", CurrentPassword: "secret1", NewPassword: "newsecret"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if h.store.account("acc-1").PasswordHash != h.store.vendor("ven-1").Password {
		t.Fatalf("expected vendor credential to follow the account")
	}
	if _, err := h.auth.Login(ctx, "shop@example.com", "newsecret"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
	if len(h.events.changed) != 1 || h.events.changed[0].Reason != passwordChangeReason {
		t.Fatalf("expected password change event, got %+v", h.events.changed)
	}
}

func TestGetAccountStripsCredential(t *testing.T) {
	h := newHarness(t)
	seedVendorAccount(t, h)

	account, err := h.accounts.GetAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.PasswordHash != "" {
		t.Fatalf("expected credential to be stripped")
	}
	if h.store.account("acc-1").PasswordHash == "" {
		t.Fatalf("expected stored credential to be untouched")
	}
}

func TestWithinTxRollsBackFailedFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seedVendorAccount(t, h)

	code := sendAndCapture(t, h, SendCodeInput{Purpose: "delete-vendor-account", UserID: "acc-1"})
	h.store.failEnsure = errors.New("insert failed")

	err := h.accounts.DeleteVendorAccount(ctx, DeleteVendorInput{UserID: "acc-1", Code: code})
	if err == nil {
		t.Fatalf("expected the flow to fail")
	}
	if h.store.account("acc-1").Role != domain.RoleVendor {
		t.Fatalf("expected demotion to be rolled back")
	}
	if _, ok := h.store.state.vendors["ven-1"]; !ok {
		t.Fatalf("expected vendor profile to survive the rollback")
	}
	if h.store.rollbacks == 0 {
		t.Fatalf("expected a rolled back transaction")
	}
	if codes := h.store.codesFor("shop@example.com", domain.PurposeDeleteVendorAccount); codes[0].Used {
		t.Fatalf("expected the code to remain unused")
	}
}
