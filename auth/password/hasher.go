// Package password hashes and verifies user passwords.
//
// Verify understands PHC-encoded argon2id and argon2i hashes as well as
// bcrypt hashes, so records written by older deployments keep working.
// New hashes use the Hasher selected by Config.Algorithm. Both operations
// are CPU bound; services run them through a Pool.
//
//	ok := password.Verify("secret", storedHash)
//	hash, err := password.NewHasher(cfg).Hash("secret")
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces an encoded hash for a new password.
type Hasher interface {
	Hash(password string) (string, error)
}

// ErrTooShort is returned by Hash for passwords below the minimum length.
var ErrTooShort = errors.New("password: too short")

const minPasswordLength = 8

// MaxArgon2Memory is the largest argon2 memory cost, in KiB (256 MiB),
// accepted from a stored hash or from config. Every pool worker may hold
// this much at once.
const MaxArgon2Memory = 1 << 18

// Upper bounds on the other parameters read from stored hashes.
const (
	maxArgon2Time    = 64
	maxArgon2KeyLen  = 1024
	minArgon2KeyLen  = 4
	minArgon2SaltLen = 1
)

// Verify reports whether plaintext matches encoded. Malformed or
// unsupported hashes yield false. It never panics.
func Verify(plaintext, encoded string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	switch {
	case strings.HasPrefix(encoded, "$argon2id$"), strings.HasPrefix(encoded, "$argon2i$"):
		return verifyArgon2(plaintext, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	default:
		return false
	}
}

// argon2Params is a decoded PHC argon2 string.
type argon2Params struct {
	variant string
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

func verifyArgon2(plaintext, encoded string) bool {
	p, err := parseArgon2(encoded)
	if err != nil {
		return false
	}

	var computed []byte
	keyLen := uint32(len(p.hash))
	switch p.variant {
	case "argon2id":
		computed = argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, keyLen)
	case "argon2i":
		computed = argon2.Key([]byte(plaintext), p.salt, p.time, p.memory, p.threads, keyLen)
	default:
		return false
	}
	return subtle.ConstantTimeCompare(computed, p.hash) == 1
}

// parseArgon2 decodes $<variant>$v=19$m=<m>,t=<t>,p=<p>$<salt>$<hash>.
func parseArgon2(encoded string) (argon2Params, error) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, errors.New("password: malformed argon2 hash")
	}
	p.variant = parts[1]

	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, fmt.Errorf("password: unsupported argon2 version %q", parts[2])
	}

	for _, kv := range strings.Split(parts[3], ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return p, errors.New("password: malformed argon2 parameters")
		}
		switch key {
		case "m":
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return p, fmt.Errorf("password: argon2 memory: %w", err)
			}
			p.memory = uint32(n)
		case "t":
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return p, fmt.Errorf("password: argon2 time: %w", err)
			}
			p.time = uint32(n)
		case "p":
			n, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return p, fmt.Errorf("password: argon2 parallelism: %w", err)
			}
			p.threads = uint8(n)
		default:
			return p, fmt.Errorf("password: unknown argon2 parameter %q", key)
		}
	}

	switch {
	case p.time < 1 || p.time > maxArgon2Time:
		return p, errors.New("password: argon2 time out of range")
	case p.threads < 1:
		return p, errors.New("password: argon2 parallelism out of range")
	case p.memory < 8*uint32(p.threads) || p.memory > MaxArgon2Memory:
		return p, errors.New("password: argon2 memory out of range")
	}

	var err error
	if p.salt, err = decodeB64(parts[4]); err != nil || len(p.salt) < minArgon2SaltLen {
		return p, errors.New("password: malformed argon2 salt")
	}
	if p.hash, err = decodeB64(parts[5]); err != nil || len(p.hash) < minArgon2KeyLen || len(p.hash) > maxArgon2KeyLen {
		return p, errors.New("password: malformed argon2 digest")
	}
	return p, nil
}

// decodeB64 accepts the unpadded PHC alphabet and tolerates padding.
func decodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// --- argon2id ---

// Argon2Hasher hashes new passwords with argon2id.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of passes.
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory cost in KiB.
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism.
func WithArgon2Threads(t uint8) Argon2Option {
	return func(h *Argon2Hasher) { h.threads = t }
}

// NewArgon2Hasher creates an argon2id hasher (t=3, m=64MiB, p=2 by default).
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:    3,
		memory:  64 * 1024,
		threads: 2,
		keyLen:  32,
		saltLen: 16,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrTooShort
	}

	salt := make([]byte, h.saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// --- bcrypt ---

// BcryptHasher hashes new passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost; out-of-range values are ignored.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt hasher (cost 12 by default).
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrTooShort
	}
	if len(password) > 72 {
		return "", errors.New("password: bcrypt input is limited to 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}
