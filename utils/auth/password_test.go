package auth

import (
	"errors"
	"testing"
)

func TestHashPasswordEnforcesMinLength(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("err = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashProvisionalPasswordAllowsShortValues(t *testing.T) {
	// roll numbers used as initial passwords can be shorter than the
	// normal minimum
	hash, err := HashProvisionalPassword("CS001")
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyPassword(hash, "CS001"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}
