package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := SignToken(secret, claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func freshClaims(email string) Claims {
	return Claims{
		Email:    email,
		PairCode: "ABC123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyTokenValid(t *testing.T) {
	tok := signed(t, testSecret, freshClaims("alice@example.com"))
	claims, err := VerifyToken(testSecret, tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.PairCode != "ABC123" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyTokenMissing(t *testing.T) {
	_, err := VerifyToken(testSecret, "")
	if !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	c := freshClaims("alice@example.com")
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	tok := signed(t, testSecret, c)
	_, err := VerifyToken(testSecret, tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTokenBadSignature(t *testing.T) {
	tok := signed(t, "other-secret", freshClaims("alice@example.com"))
	_, err := VerifyToken(testSecret, tok)
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestVerifyTokenMalformed(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.token")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyTokenEmptyEmailClaim(t *testing.T) {
	tok := signed(t, testSecret, freshClaims(""))
	_, err := VerifyToken(testSecret, tok)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for missing email, got %v", err)
	}
}

func TestCloseCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ErrTokenMissing, CloseMissingToken},
		{ErrTokenExpired, CloseTokenExpired},
		{ErrTokenMalformed, CloseTokenMalformed},
		{ErrTokenSignature, CloseTokenSignature},
		{ErrUnauthorized, CloseUnauthorizedPair},
		{errors.New("anything else"), CloseTokenMalformed},
	}
	for _, c := range cases {
		if got := CloseCode(c.err); got != c.code {
			t.Fatalf("%v: expected %d, got %d", c.err, c.code, got)
		}
	}
}
