// Package jwt encodes and decodes the signed session tokens.
//
// A Codec holds the immutable signing secret and the token lifetimes.
// Expiry is enforced at decode time against the codec's clock with no
// leeway; any signature, structure or expiry failure is reported as
// ErrInvalidToken.
//
// Access and refresh tokens carry the same claims but are signed with
// different keys: access tokens with the secret, refresh tokens with
// HMAC-SHA256(secret, "refresh"). Neither kind decodes as the other.
//
//	codec, err := jwt.NewCodec(cfg)
//	access, err := codec.Encode(jwt.NewClaims(userID, role, time.Now(), cfg.AccessTokenTTL))
//	claims, err := codec.Decode(access)
//	refresh, err := codec.EncodeRefresh(jwt.NewClaims(userID, role, time.Now(), cfg.RefreshTokenTTL))
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Decode for every rejected token.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Codec signs and verifies Claims.
type Codec struct {
	cfg        Config
	method     gojwt.SigningMethod
	key        []byte
	refreshKey []byte
	now        func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock sets the clock used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec validates cfg and returns a codec bound to its secret.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	c := &Codec{
		cfg:        cfg,
		method:     cfg.signingMethod(),
		key:        []byte(cfg.Secret),
		refreshKey: deriveKey(cfg.Secret, "refresh"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTokenTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTokenTTL }

// Now returns the codec's current time.
func (c *Codec) Now() time.Time { return c.now() }

// Encode signs access token claims. Claims whose expiry is not after
// issued-at are rejected.
func (c *Codec) Encode(claims Claims) (string, error) {
	return c.encode(claims, c.key)
}

// EncodeRefresh signs refresh token claims.
func (c *Codec) EncodeRefresh(claims Claims) (string, error) {
	return c.encode(claims, c.refreshKey)
}

// Decode verifies an access token and returns its claims.
func (c *Codec) Decode(token string) (Claims, error) {
	return c.decode(token, c.key)
}

// DecodeRefresh verifies a refresh token and returns its claims.
func (c *Codec) DecodeRefresh(token string) (Claims, error) {
	return c.decode(token, c.refreshKey)
}

func (c *Codec) encode(claims Claims, key []byte) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("jwt: subject is required")
	}
	if !claims.ExpiresAt.Truncate(time.Second).After(claims.IssuedAt.Truncate(time.Second)) {
		return "", errors.New("jwt: expiry must be after issued-at")
	}
	token := gojwt.NewWithClaims(c.method, toWire(claims))
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) decode(token string, key []byte) (Claims, error) {
	wire := &wireClaims{}
	parsed, err := gojwt.ParseWithClaims(token, wire,
		func(t *gojwt.Token) (interface{}, error) {
			if t.Method.Alg() != c.method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}
			return key, nil
		},
		gojwt.WithValidMethods([]string{c.method.Alg()}),
		gojwt.WithTimeFunc(c.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || wire.IssuedAt == nil || wire.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return wire.claims(), nil
}

// deriveKey returns HMAC-SHA256(secret, purpose).
func deriveKey(secret, purpose string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}
