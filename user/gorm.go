package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/sessionkit/database"
)

// GormStore implements Store on the users table.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store over db.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByIdentifier(ctx context.Context, identifier string) (*Record, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if ident == "" {
		return nil, nil
	}

	var r Record
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = ? OR LOWER(email) = ?", ident, ident).
		Order("created_at").
		Take(&r).Error
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user: find by identifier: %w", err)
	}
	return &r, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*Record, error) {
	var r Record
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&r).Error
	if database.IsNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: find by id: %w", err)
	}
	return &r, nil
}

func (s *GormStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at.UTC())
	if res.Error != nil {
		return fmt.Errorf("user: update last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	var rows []struct {
		Username string
		Email    string
	}
	u, e := strings.ToLower(username), strings.ToLower(email)
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Select("username", "email").
		Where("LOWER(username) = ? OR LOWER(email) = ?", u, e).
		Find(&rows).Error
	if err != nil {
		return false, false, fmt.Errorf("user: conflict check: %w", err)
	}

	var usernameTaken, emailTaken bool
	for _, row := range rows {
		usernameTaken = usernameTaken || strings.ToLower(row.Username) == u
		emailTaken = emailTaken || strings.ToLower(row.Email) == e
	}
	return usernameTaken, emailTaken, nil
}

func (s *GormStore) Create(ctx context.Context, r *Record) error {
	err := s.db.WithContext(ctx).Create(r).Error
	if err == nil {
		return nil
	}
	if detail, ok := database.UniqueViolation(err); ok {
		return conflictFromDetail(detail, err)
	}
	return fmt.Errorf("user: create: %w", err)
}

// conflictFromDetail picks the conflict named by a constraint error. Any
// other uniqueness failure counts as a username conflict.
func conflictFromDetail(detail string, cause error) error {
	if strings.Contains(strings.ToLower(detail), "email") {
		return fmt.Errorf("%w: %v", ErrEmailTaken, cause)
	}
	return fmt.Errorf("%w: %v", ErrUsernameTaken, cause)
}
