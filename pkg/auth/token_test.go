package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/varejolabs/pdv-terminal/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "pdv-terminal",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseOperatorToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	operatorID := uuid.MustParse("9a1bde52-3db2-4b7e-9f57-2f6f0a9d8c11")

	signed, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID:      operatorID,
		OperatorName:    "Joana",
		RegisterLocalID: "caixa-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseOperatorToken(cfg, signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.OperatorID != operatorID {
		t.Fatalf("unexpected operator id %s", claims.OperatorID)
	}
	if claims.RegisterLocalID != "caixa-01" {
		t.Fatalf("unexpected register %q", claims.RegisterLocalID)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID: uuid.MustParse("9a1bde52-3db2-4b7e-9f57-2f6f0a9d8c11"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := cfg
	other.Secret = "other-secret"
	if _, err := ParseOperatorToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintOperatorToken(cfg, time.Now().Add(-2*time.Hour), OperatorTokenPayload{
		OperatorID: uuid.MustParse("9a1bde52-3db2-4b7e-9f57-2f6f0a9d8c11"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ParseOperatorToken(cfg, signed); err == nil {
		t.Fatal("expected expiry rejection")
	}
}

func TestMintValidatesPayload(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	if _, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{}); err == nil {
		t.Fatal("expected error for missing operator id")
	}

	noSecret := cfg
	noSecret.Secret = ""
	if _, err := MintOperatorToken(noSecret, time.Now(), OperatorTokenPayload{
		OperatorID: uuid.MustParse("9a1bde52-3db2-4b7e-9f57-2f6f0a9d8c11"),
	}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
