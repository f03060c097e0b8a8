package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session token verification failures. Callers treat all three as "no
// valid session"; they are distinguished so logs can tell tampering
// apart from ordinary expiry.
var (
	ErrTokenExpired   = errors.New("session token expired")
	ErrTokenSignature = errors.New("session token signature invalid")
	ErrTokenMalformed = errors.New("session token malformed")
)

type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// NewSessionToken issues a signed, self-contained session token for the
// given user id. The token carries a jti so that an optional denylist
// can revoke it before expiry.
func NewSessionToken(secret, issuer string, ttl time.Duration, userID string) (string, error) {
	return newSessionTokenAt(secret, issuer, ttl, userID, time.Now().UTC())
}

func newSessionTokenAt(secret, issuer string, ttl time.Duration, userID string, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken checks signature integrity and expiry and returns
// the embedded claims. Failures are classified as ErrTokenExpired,
// ErrTokenSignature or ErrTokenMalformed.
func ParseSessionToken(secret, issuer, tokenString string) (*SessionClaims, error) {
	return parseSessionTokenAt(secret, issuer, tokenString, time.Now)
}

func parseSessionTokenAt(secret, issuer, tokenString string, now func() time.Time) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		return nil, classifyTokenError(err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
