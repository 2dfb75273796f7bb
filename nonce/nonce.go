// Package nonce issues and verifies single-purpose form tokens. A token is
// bound to a purpose string and to the user and session that requested it, so
// a token rendered for one target cannot be replayed for another.
package nonce

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

type claims struct {
	Purpose   string `json:"act"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue returns a token for purpose on behalf of userID in sessionID.
func (i *Issuer) Issue(userID int64, sessionID string, purpose string) (string, error) {
	now := i.now()
	c := claims{
		Purpose:   purpose,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("nonce: sign: %w", err)
	}
	return token, nil
}

// Verify reports whether token was issued for purpose to userID in sessionID
// and has not expired.
func (i *Issuer) Verify(token string, userID int64, sessionID string, purpose string) bool {
	if token == "" {
		return false
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return false
	}

	return equal(c.Purpose, purpose) &&
		equal(c.Subject, strconv.FormatInt(userID, 10)) &&
		equal(c.SessionID, sessionID)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
