package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndDecode(t *testing.T) {
	issuer := NewIssuer("dev-secret", "HS256", time.Hour)

	signed, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	subject, err := issuer.Decode(signed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", subject)
	}
}

func TestDecodeExpired(t *testing.T) {
	issuer := NewIssuer("dev-secret", "HS256", time.Hour)

	signed, err := issuer.IssueWithTTL("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	if _, err := issuer.Decode(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeTamperedSignature(t *testing.T) {
	issuer := NewIssuer("dev-secret", "HS256", time.Hour)
	other := NewIssuer("other-secret", "HS256", time.Hour)

	signed, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Decode(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeMangledPayload(t *testing.T) {
	issuer := NewIssuer("dev-secret", "HS256", time.Hour)

	signed, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	mangled := parts[0] + ".e30." + parts[2]
	if _, err := issuer.Decode(mangled); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := issuer.Decode("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUnknownAlgorithmFallsBackToHS256(t *testing.T) {
	issuer := NewIssuer("dev-secret", "HS999", time.Hour)

	signed, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewIssuer("dev-secret", "HS256", time.Hour).Decode(signed); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}
