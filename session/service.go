package session

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/auth/password"
	"github.com/kbukum/sessionkit/errors"
	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/observability"
	"github.com/kbukum/sessionkit/user"
	"github.com/kbukum/sessionkit/validation"
)

// PasswordPool runs password hashing off the request goroutine.
// *password.Pool implements it.
type PasswordPool interface {
	Verify(ctx context.Context, plaintext, encoded string) (bool, error)
	Hash(ctx context.Context, plaintext string) (string, error)
}

var _ PasswordPool = (*password.Pool)(nil)

// Tokens is the pair issued on login.
type Tokens struct {
	Access  string
	Refresh string
}

// LoginInput is the login request body.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=1024"`
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// Service implements login, refresh, registration and profile lookup.
type Service struct {
	store   user.Store
	pool    PasswordPool
	codec   *jwt.Codec
	log     *logger.Logger
	metrics *observability.SessionMetrics
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records outcome counters and pool timings on m.
func WithMetrics(m *observability.SessionMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithIDGenerator overrides the user id generator (default: UUIDv4).
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a Service. The codec's clock is the service clock.
func New(store user.Store, pool PasswordPool, codec *jwt.Codec, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		pool:  pool,
		codec: codec,
		log:   log.WithComponent("session"),
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates identifier (username or email) with plaintext and
// issues an access and a refresh token.
func (s *Service) Login(ctx context.Context, identifier, plaintext string) (Tokens, error) {
	ctx, span := observability.StartSpan(ctx, "session.login")
	outcome := observability.OutcomeSuccess
	var err error
	defer func() {
		s.metrics.RecordLogin(ctx, outcome)
		observability.EndSpan(span, outcome, err)
	}()

	log := s.log.WithContext(ctx)

	rec, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		outcome = observability.OutcomeError
		log.Error("Credential lookup failed", logger.ErrorFields("login", err))
		return Tokens{}, errors.Internal(err)
	}
	if rec == nil {
		outcome = observability.OutcomeUserNotFound
		return Tokens{}, errors.UserNotFound()
	}

	ok, err := s.verify(ctx, plaintext, rec.PasswordHash)
	if err != nil {
		outcome = observability.OutcomeError
		log.Error("Password verification could not run", logger.ErrorFields("login", err))
		return Tokens{}, errors.Internal(err)
	}
	if !ok {
		outcome = observability.OutcomeBadCredential
		return Tokens{}, errors.BadCredential()
	}

	now := s.codec.Now()
	tokens, err := s.issue(rec.ID, rec.Role, now)
	if err != nil {
		outcome = observability.OutcomeError
		log.Error("Token issuance failed", logger.ErrorFields("login", err))
		return Tokens{}, errors.Internal(err)
	}

	// Tokens are already minted; a failed last-login write is only reported.
	if uerr := s.store.UpdateLastLogin(ctx, rec.ID, now); uerr != nil {
		log.Error("Last login update failed", logger.Fields(
			logger.FieldOperation, "login",
			logger.FieldUserID, rec.ID,
			logger.FieldError, uerr.Error(),
		))
	}

	log.Info("User logged in", logger.Fields(logger.FieldUserID, rec.ID))
	return tokens, nil
}

// Refresh validates refreshToken and returns a new access token for the
// same subject and role. Every decode failure, including expiry, is
// INVALID_REFRESH_TOKEN.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "session.refresh")
	outcome := observability.OutcomeSuccess
	var err error
	defer func() {
		s.metrics.RecordRefresh(ctx, outcome)
		observability.EndSpan(span, outcome, err)
	}()

	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		outcome = observability.OutcomeInvalidToken
		s.log.WithContext(ctx).Debug("Refresh token rejected", logger.ErrorFields("refresh", err))
		return "", errors.InvalidRefreshToken()
	}

	access, err := s.codec.Encode(jwt.NewClaims(claims.Subject, claims.Role, s.codec.Now(), s.codec.AccessTTL()))
	if err != nil {
		outcome = observability.OutcomeError
		s.log.WithContext(ctx).Error("Access token issuance failed", logger.ErrorFields("refresh", err))
		return "", errors.Internal(err)
	}
	return access, nil
}

// Logout is a no-op on the server: tokens are self-contained and there
// is no session record to remove. The boundary clears the cookies.
func (s *Service) Logout(ctx context.Context) {
	if id, ok := logger.UserIDFromContext(ctx); ok {
		s.log.WithContext(ctx).Debug("User logged out", logger.Fields(logger.FieldUserID, id))
	}
}

// Register creates a user with role "user" and returns its profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.Profile, error) {
	ctx, span := observability.StartSpan(ctx, "session.register")
	outcome := observability.OutcomeSuccess
	var err error
	defer func() {
		s.metrics.RecordRegister(ctx, outcome)
		observability.EndSpan(span, outcome, err)
	}()

	log := s.log.WithContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err = validation.Validate(in); err != nil {
		outcome = observability.OutcomeInvalidInput
		return user.Profile{}, err
	}

	usernameTaken, emailTaken, err := s.store.Taken(ctx, in.Username, in.Email)
	if err != nil {
		outcome = observability.OutcomeError
		log.Error("Registration lookup failed", logger.ErrorFields("register", err))
		return user.Profile{}, errors.Internal(err)
	}
	switch {
	case usernameTaken:
		outcome = observability.OutcomeConflict
		return user.Profile{}, errors.UsernameConflict()
	case emailTaken:
		outcome = observability.OutcomeConflict
		return user.Profile{}, errors.EmailConflict()
	}

	hash, err := s.hash(ctx, in.Password)
	if err != nil {
		if stderrors.Is(err, password.ErrTooShort) {
			outcome = observability.OutcomeInvalidInput
			return user.Profile{}, errors.InvalidInput("password", "must be at least 8 characters")
		}
		outcome = observability.OutcomeError
		log.Error("Password hashing failed", logger.ErrorFields("register", err))
		return user.Profile{}, errors.Internal(err)
	}

	rec := &user.Record{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		CreatedAt:    s.codec.Now().UTC(),
	}
	if err = s.store.Create(ctx, rec); err != nil {
		switch {
		case stderrors.Is(err, user.ErrUsernameTaken):
			outcome = observability.OutcomeConflict
			return user.Profile{}, errors.UsernameConflict()
		case stderrors.Is(err, user.ErrEmailTaken):
			outcome = observability.OutcomeConflict
			return user.Profile{}, errors.EmailConflict()
		}
		outcome = observability.OutcomeError
		log.Error("User insert failed", logger.ErrorFields("register", err))
		return user.Profile{}, errors.Internal(err)
	}

	log.Info("User registered", logger.Fields(logger.FieldUserID, rec.ID))
	return rec.Profile(), nil
}

// Profile returns the public profile of userID. Any failure, including
// a missing user, is INTERNAL_ERROR: the id comes from a verified token.
func (s *Service) Profile(ctx context.Context, userID string) (user.Profile, error) {
	rec, err := s.store.FindByID(ctx, userID)
	if err != nil {
		s.log.WithContext(ctx).Error("Profile lookup failed", logger.Fields(
			logger.FieldOperation, "profile",
			logger.FieldUserID, userID,
			logger.FieldError, err.Error(),
		))
		return user.Profile{}, errors.Internal(err)
	}
	return rec.Profile(), nil
}

func (s *Service) issue(subject, role string, now time.Time) (Tokens, error) {
	access, err := s.codec.Encode(jwt.NewClaims(subject, role, now, s.codec.AccessTTL()))
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.codec.EncodeRefresh(jwt.NewClaims(subject, role, now, s.codec.RefreshTTL()))
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

func (s *Service) verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	start := time.Now()
	ok, err := s.pool.Verify(ctx, plaintext, encoded)
	s.metrics.RecordPassword(ctx, "verify", time.Since(start))
	return ok, err
}

func (s *Service) hash(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	h, err := s.pool.Hash(ctx, plaintext)
	s.metrics.RecordPassword(ctx, "hash", time.Since(start))
	return h, err
}
