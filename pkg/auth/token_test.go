package auth

import (
	"testing"
	"time"

	"github.com/leadfolio/leadfolio-backend/pkg/config"
)

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "leadfolio",
		TTLMinutes: 60,
		CookieName: "leadfolio_session",
	}
}

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := sessionConfig()
	now := time.Now()

	signed, err := MintSessionToken(cfg, now, SessionTokenPayload{
		UserID: "did:magic:abc123",
		Email:  "agent@example.com",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseSessionToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "did:magic:abc123" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.Email != "agent@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.ID == "" {
		t.Fatal("expected a session id to be minted")
	}
}

func TestMintSessionTokenPreservesSessionID(t *testing.T) {
	cfg := sessionConfig()

	signed, err := MintSessionToken(cfg, time.Now(), SessionTokenPayload{
		UserID:    "did:magic:abc123",
		SessionID: "fixed-session",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseSessionToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "fixed-session" {
		t.Fatalf("expected session id to round-trip, got %q", claims.ID)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	cfg := sessionConfig()
	signed, err := MintSessionToken(cfg, time.Now(), SessionTokenPayload{UserID: "u1"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseSessionToken(other, signed); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestMintSessionTokenRequiresUser(t *testing.T) {
	if _, err := MintSessionToken(sessionConfig(), time.Now(), SessionTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}
