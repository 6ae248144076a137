// Package token issues and decodes the signed bearer tokens that identify a
// logged-in user. Tokens are stateless: there is no revocation, only the
// signature and expiry check.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Issuer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewIssuer builds an Issuer for the given HMAC algorithm (HS256, HS384 or
// HS512). Unknown algorithms fall back to HS256. ttl applies to Issue.
func NewIssuer(secret string, algorithm string, ttl time.Duration) *Issuer {
	method := jwt.SigningMethodHS256
	switch algorithm {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	}
	return &Issuer{secret: []byte(secret), method: method, ttl: ttl}
}

// Issue creates a signed token with subject and the configured TTL.
func (i *Issuer) Issue(subject string) (string, error) {
	return i.IssueWithTTL(subject, i.ttl)
}

func (i *Issuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Decode verifies signature and expiry and returns the subject. Any
// failure (bad signature, malformed payload, expired, empty subject) is
// ErrInvalidToken.
func (i *Issuer) Decode(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil || parsed == nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
