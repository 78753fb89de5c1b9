package auth

import (
	"strings"
	"testing"
)

// All password tests use the minimum bcrypt cost — the logic under test is
// identical, and cost 12 would make this file take seconds per case.
func newTestPasswords() *PasswordService {
	return NewPasswordServiceForTest()
}

func TestHash_ProducesBcryptString(t *testing.T) {
	ps := newTestPasswords()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q does not look like bcrypt output", hash)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}
}

func TestHash_DifferentSaltsPerCall(t *testing.T) {
	ps := newTestPasswords()

	h1, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswords()

	_, err := ps.Hash(strings.Repeat("x", 73))
	if err == nil {
		t.Fatal("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerify_Match(t *testing.T) {
	ps := newTestPasswords()

	hash, _ := ps.Hash("pw1")
	if err := ps.Verify(hash, "pw1"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
}

func TestVerify_Mismatch(t *testing.T) {
	ps := newTestPasswords()

	hash, _ := ps.Hash("pw1")
	if err := ps.Verify(hash, "pw2"); err == nil {
		t.Error("Verify() should fail for the wrong password")
	}
}

func TestNewPasswordService_ClampsBadCost(t *testing.T) {
	// An out-of-range cost silently falls back to the default rather than
	// producing a service that errors on every Hash call.
	ps := NewPasswordService(999)
	if _, err := ps.Hash("pw"); err != nil {
		t.Errorf("Hash() with clamped cost: %v", err)
	}
}
