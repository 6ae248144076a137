package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", encoded)
	}

	ok, err := h.Verify("password123", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected match")
	}

	ok, err = h.Verify("wrongpassword", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewHasher()

	a, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("expected different hashes for the same password")
	}
}

func TestVerifyBcryptHash(t *testing.T) {
	h := NewHasher()

	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}

	ok, err := h.Verify("password123", string(legacy))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected bcrypt hash to verify")
	}

	ok, err = h.Verify("wrongpassword", string(legacy))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch against bcrypt hash")
	}
}

func TestVerifyAndUpgradeFromBcrypt(t *testing.T) {
	h := NewHasher()

	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}

	valid, newHash, err := h.VerifyAndUpgrade("password123", string(legacy))
	if err != nil {
		t.Fatalf("VerifyAndUpgrade: %v", err)
	}
	if !valid {
		t.Fatal("expected valid")
	}
	if newHash == "" {
		t.Fatal("expected an upgraded hash")
	}
	if !strings.HasPrefix(newHash, "$argon2id$") {
		t.Fatalf("expected argon2id upgrade, got %q", newHash)
	}

	// The upgraded hash verifies the same password under the current scheme.
	ok, err := h.Verify("password123", newHash)
	if err != nil {
		t.Fatalf("Verify upgraded: %v", err)
	}
	if !ok {
		t.Fatal("upgraded hash does not verify the password")
	}
}

func TestVerifyAndUpgradeCurrentSchemeNoop(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	valid, newHash, err := h.VerifyAndUpgrade("password123", encoded)
	if err != nil {
		t.Fatalf("VerifyAndUpgrade: %v", err)
	}
	if !valid {
		t.Fatal("expected valid")
	}
	if newHash != "" {
		t.Fatalf("expected no upgrade, got %q", newHash)
	}
}

func TestVerifyAndUpgradeMismatch(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	valid, newHash, err := h.VerifyAndUpgrade("wrongpassword", encoded)
	if err != nil {
		t.Fatalf("VerifyAndUpgrade: %v", err)
	}
	if valid || newHash != "" {
		t.Fatalf("expected (false, \"\"), got (%v, %q)", valid, newHash)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher()

	for _, encoded := range []string{"", "plaintext", "$argon2id$garbage", "$md5$abc"} {
		ok, err := h.Verify("password123", encoded)
		if ok {
			t.Fatalf("hash %q: expected no match", encoded)
		}
		if err == nil {
			t.Fatalf("hash %q: expected error", encoded)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	h := NewHasher()

	if !h.NeedsUpgrade("$2a$10$abcdefghijklmnopqrstuv") {
		t.Fatal("bcrypt hash should need upgrade")
	}

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h.NeedsUpgrade(encoded) {
		t.Fatal("current-scheme hash should not need upgrade")
	}

	// Weaker memory parameter than current.
	weak := "$argon2id$v=19$m=8192,t=1,p=4$c29tZXNhbHQ$c29tZWtleQ"
	if !h.NeedsUpgrade(weak) {
		t.Fatal("weak-parameter hash should need upgrade")
	}
}
