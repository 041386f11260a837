package domain

import (
	"testing"
	"time"
)

func TestParsePurpose(t *testing.T) {
	for _, p := range VerificationPurposes {
		got, ok := ParsePurpose(string(p))
		if !ok || got != p {
			t.Fatalf("expected %q to parse, got %q ok=%v", p, got, ok)
		}
	}

	if _, ok := ParsePurpose("login"); ok {
		t.Fatalf("expected unknown purpose to be rejected")
	}
}

func TestVerificationCodeValidAt(t *testing.T) {
	now := time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)
	code := VerificationCode{ExpiresAt: now.Add(time.Minute)}

	if !code.ValidAt(now) {
		t.Fatalf("expected unexpired unused code to be valid")
	}
	if code.ValidAt(now.Add(time.Minute)) {
		t.Fatalf("expected code to be invalid at its expiry instant")
	}

	code.Used = true
	if code.ValidAt(now) {
		t.Fatalf("expected used code to be invalid")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Fresh Farm Produce": "fresh-farm-produce",
		"  Mama's Kitchen! ": "mama-s-kitchen",
		"A&B -- Grocers":     "a-b-grocers",
		"!!!":                "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}
