package services

import (
	"strings"
	"testing"
	"time"
)

func TestPasswordResetMail(t *testing.T) {
	subject, body := PasswordResetMail("https://app.example.com/", "tok+en/value", 30*time.Minute)
	if subject == "" {
		t.Fatal("expected a subject")
	}
	if !strings.Contains(body, "https://app.example.com/reset-password?token=tok%2Ben%2Fvalue") {
		t.Fatalf("expected escaped reset link, got:\n%s", body)
	}
	if !strings.Contains(body, "expires in 30 minutes") {
		t.Fatalf("expected 30-minute expiry notice, got:\n%s", body)
	}
}

func TestPasswordResetMailUsesConfiguredTTL(t *testing.T) {
	_, body := PasswordResetMail("https://app.example.com", "sometoken", 45*time.Minute)
	if !strings.Contains(body, "expires in 45 minutes") {
		t.Fatalf("expected 45-minute expiry notice, got:\n%s", body)
	}
}

func TestSMTPSenderRequiresConfig(t *testing.T) {
	s := &SMTPSender{}
	if err := s.Send("a@b.com", "subject", "body"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
