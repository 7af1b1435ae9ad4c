package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by access and refresh tokens.
// Times have second precision.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewClaims builds claims issued at now and expiring ttl later.
func NewClaims(subject, role string, now time.Time, ttl time.Duration) Claims {
	iat := now.Truncate(time.Second)
	return Claims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(ttl),
	}
}

// wireClaims is the JSON form: {"sub","role","iat","exp"}.
type wireClaims struct {
	Subject   string             `json:"sub"`
	Role      string             `json:"role"`
	IssuedAt  *gojwt.NumericDate `json:"iat"`
	ExpiresAt *gojwt.NumericDate `json:"exp"`
}

var _ gojwt.Claims = (*wireClaims)(nil)

func (w *wireClaims) GetExpirationTime() (*gojwt.NumericDate, error) { return w.ExpiresAt, nil }
func (w *wireClaims) GetIssuedAt() (*gojwt.NumericDate, error)       { return w.IssuedAt, nil }
func (w *wireClaims) GetNotBefore() (*gojwt.NumericDate, error)      { return nil, nil }
func (w *wireClaims) GetIssuer() (string, error)                     { return "", nil }
func (w *wireClaims) GetSubject() (string, error)                    { return w.Subject, nil }
func (w *wireClaims) GetAudience() (gojwt.ClaimStrings, error)       { return nil, nil }

func toWire(c Claims) *wireClaims {
	return &wireClaims{
		Subject:   c.Subject,
		Role:      c.Role,
		IssuedAt:  gojwt.NewNumericDate(c.IssuedAt),
		ExpiresAt: gojwt.NewNumericDate(c.ExpiresAt),
	}
}

func (w *wireClaims) claims() Claims {
	return Claims{
		Subject:   w.Subject,
		Role:      w.Role,
		IssuedAt:  w.IssuedAt.Time,
		ExpiresAt: w.ExpiresAt.Time,
	}
}
