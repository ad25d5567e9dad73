package identity

import (
	"testing"
	"time"
)

func TestMintAndParseToken(t *testing.T) {
	now := time.Now().UTC()
	token, expiresAt, err := mintToken(testTokens, now, "user-1", true, "")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if !expiresAt.Equal(now.Add(testTokens.TTL)) {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	claims, err := parseToken(testTokens, now, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" || !claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
	if claims.Issuer != testTokens.Issuer {
		t.Fatalf("expected issuer %q, got %q", testTokens.Issuer, claims.Issuer)
	}
}

func TestParseTokenWrongIssuer(t *testing.T) {
	now := time.Now()
	token, _, err := mintToken(testTokens, now, "user-1", false, "jti-1")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	cfg := testTokens
	cfg.Issuer = "someone-else"
	if _, err := parseToken(cfg, now, token); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestMintTokenRequiresSecret(t *testing.T) {
	if _, _, err := mintToken(TokenConfig{TTL: time.Minute}, time.Now(), "user-1", false, ""); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}
