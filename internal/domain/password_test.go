package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
	if err := ValidatePassword("short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := ValidatePassword(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"user@example.com",
		"a.b+c@sub.example.org",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("expected %q valid, got %v", email, err)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@@example.com",
		"a@b@c.com",
		"user@nodot",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected %q invalid, got %v", email, err)
		}
	}
}

func TestAccountCanLoginAndLockout(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	account := Account{IsActive: true, IsEmailVerified: true, PasswordHash: "x"}
	if !account.CanLogin() {
		t.Fatalf("completed account should be able to log in")
	}
	for _, broken := range []Account{
		{IsActive: false, IsEmailVerified: true, PasswordHash: "x"},
		{IsActive: true, IsEmailVerified: false, PasswordHash: "x"},
		{IsActive: true, IsEmailVerified: true, PasswordHash: ""},
	} {
		if broken.CanLogin() {
			t.Fatalf("incomplete account should not be able to log in: %+v", broken)
		}
	}

	if account.LockedAt(now) {
		t.Fatalf("account without lockout window should not be locked")
	}
	future := now.Add(time.Minute)
	account.LockedUntil = &future
	if !account.LockedAt(now) {
		t.Fatalf("account with future lockout window should be locked")
	}
	if account.LockedAt(future) {
		t.Fatalf("lockout should end at the window boundary")
	}
}

func TestPlanRank(t *testing.T) {
	t.Parallel()

	if PlanFree.Rank() >= PlanDeveloper.Rank() ||
		PlanDeveloper.Rank() >= PlanProfessional.Rank() ||
		PlanProfessional.Rank() >= PlanEnterprise.Rank() {
		t.Fatalf("plan hierarchy out of order")
	}
	if Plan("mystery").Rank() >= PlanFree.Rank() {
		t.Fatalf("unknown plans must rank below free")
	}
}
