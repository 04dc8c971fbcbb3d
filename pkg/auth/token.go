package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Connection-fatal authentication failures. Each maps to a distinct close
// code so clients can branch (re-login vs. re-pair).
var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrUnauthorized   = errors.New("identity not authorized for conversation")
)

// Websocket close codes in the application range (4000-4999).
const (
	CloseMissingToken     = 4000
	CloseTokenExpired     = 4001
	CloseTokenMalformed   = 4002
	CloseTokenSignature   = 4003
	CloseUnauthorizedPair = 4004
)

// CloseCode maps an authentication failure to its close code. Unknown
// errors map to the malformed code, the non-retryable bucket.
func CloseCode(err error) int {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return CloseMissingToken
	case errors.Is(err, ErrTokenExpired):
		return CloseTokenExpired
	case errors.Is(err, ErrTokenSignature):
		return CloseTokenSignature
	case errors.Is(err, ErrUnauthorized):
		return CloseUnauthorizedPair
	default:
		return CloseTokenMalformed
	}
}

// Claims carried by a connection token.
type Claims struct {
	Email    string `json:"email"`
	PairCode string `json:"pairCode,omitempty"`
	jwt.RegisteredClaims
}

// VerifyToken validates a signed HS256 token and extracts its claims.
// Expiry, malformed structure and bad signatures are reported as distinct
// sentinel errors. The embedded pairCode claim is informational only;
// authorization against the current directory state happens separately.
func VerifyToken(secret, token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrTokenMissing
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if claims.Email == "" {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}

// SignToken issues a token for the given claims. Used by backend tooling
// and tests; the server itself only verifies.
func SignToken(secret string, claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
