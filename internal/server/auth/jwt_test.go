package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/linkup-social/linkup/internal/common"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"), time.Hour)

	tok, err := issuer.Issue("acc-123", "Ann")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.AccountID != "acc-123" {
		t.Errorf("AccountID = %q", claims.AccountID)
	}
	if claims.Name != "Ann" {
		t.Errorf("Name = %q", claims.Name)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	other := NewTokenIssuer([]byte("secret-b"), time.Hour)

	tok, err := issuer.Issue("acc-123", "Ann")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := other.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"), -time.Minute)

	tok, err := issuer.Issue("acc-123", "Ann")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := issuer.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"), time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
