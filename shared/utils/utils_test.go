package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID("tsk")
	b := GenerateID("tsk")
	if !strings.HasPrefix(a, "tsk-") || !ValidateTaskID(a) {
		t.Errorf("GenerateID() = %q, want tsk- prefix", a)
	}
	if a == b {
		t.Error("GenerateID() returned duplicate IDs")
	}
	if !ValidateUserID(GenerateID("usr")) {
		t.Error("expected usr- IDs to validate as user IDs")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "password123"},
		{name: "minimum length", password: "123456"},
		{name: "unicode password", password: "密码123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if hash == tt.password {
				t.Error("HashPassword() returned the plaintext")
			}
			if !hasher.CheckPassword(tt.password, hash) {
				t.Error("CheckPassword() rejected the correct password")
			}
			if hasher.CheckPassword(tt.password+"x", hash) {
				t.Error("CheckPassword() accepted a wrong password")
			}
		})
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	if h := NewPasswordHasher(0); h.cost != bcrypt.MinCost {
		t.Errorf("cost = %d, want %d", h.cost, bcrypt.MinCost)
	}
	if h := NewPasswordHasher(99); h.cost != bcrypt.MaxCost {
		t.Errorf("cost = %d, want %d", h.cost, bcrypt.MaxCost)
	}
}
