package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter2" {
		t.Fatal("plaintext stored")
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != PasswordCost {
		t.Fatalf("cost %d", cost)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatal("valid password rejected")
	}
	if CheckPassword(hash, "wrong") || CheckPassword("", "hunter2") {
		t.Fatal("invalid password accepted")
	}
	if _, err := HashPassword(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("72 bytes must hash: %v", err)
	}
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
