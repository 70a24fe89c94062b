package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/marlowe/talenttrack/internal/apperr"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password should match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password should not match")
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("secret-b", time.Hour).Verify(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("foreign-signed token err = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	// ttl <= 0 falls back to the 24h default, so use a tiny positive ttl.
	m := NewManager("secret", time.Nanosecond)
	token, err := m.Issue(1)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Verify(token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expired token err = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := NewManager("secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(tok); !errors.Is(err, apperr.ErrUnauthorized) {
			t.Errorf("Verify(%q) err = %v, want ErrUnauthorized", tok, err)
		}
	}
}
