package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_NotPlaintext(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "pw1" || strings.Contains(hash, "pw1") {
		t.Errorf("hash should not contain the password, got %s", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %s", hash)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("same password should produce different hashes")
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	ok, err := CheckPassword(hash, "correct horse")
	if err != nil || !ok {
		t.Errorf("correct password should match, ok=%v err=%v", ok, err)
	}

	ok, err = CheckPassword(hash, "battery staple")
	if err != nil {
		t.Errorf("wrong password should not be an error: %v", err)
	}
	if ok {
		t.Error("wrong password should not match")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	t.Parallel()

	ok, err := CheckPassword("plaintext-from-old-schema", "plaintext-from-old-schema")
	if err == nil {
		t.Error("expected an error for a non-bcrypt hash")
	}
	if ok {
		t.Error("invalid hash must never match")
	}
}
