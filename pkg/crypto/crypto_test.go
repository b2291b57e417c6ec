package crypto

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}
}

func TestHashPasswordCost(t *testing.T) {
	hash, err := HashPasswordCost("secret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost error: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("expected cost %d, got %d", bcrypt.MinCost, cost)
	}

	// Out-of-range costs fall back to the default.
	hash, err = HashPasswordCost("secret", bcrypt.MaxCost+1)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	cost, err = bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost error: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if len(token) == 0 {
		t.Fatal("expected token to be non-empty")
	}
}
