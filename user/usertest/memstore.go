// Package usertest provides an in-memory user.Store for tests.
package usertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/sessionkit/user"
)

// MemStore is a concurrency-safe in-memory user.Store.
// Set the Err fields to make the matching method fail.
type MemStore struct {
	mu      sync.Mutex
	records map[string]*user.Record

	FindErr        error
	UpdateLoginErr error
	CreateErr      error

	// LastLoginCalls counts UpdateLastLogin invocations.
	LastLoginCalls int
}

var _ user.Store = (*MemStore)(nil)

// NewMemStore creates a store holding copies of records.
func NewMemStore(records ...*user.Record) *MemStore {
	s := &MemStore{records: make(map[string]*user.Record)}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put inserts or replaces a copy of r.
func (s *MemStore) Put(r *user.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.records[r.ID] = &cp
}

// Get returns a copy of the record with id.
func (s *MemStore) Get(id string) (user.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return user.Record{}, false
	}
	return *r, true
}

func (s *MemStore) FindByIdentifier(ctx context.Context, identifier string) (*user.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, r := range s.records {
		if strings.EqualFold(r.Username, identifier) || strings.EqualFold(r.Email, identifier) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) FindByID(ctx context.Context, id string) (*user.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	r, ok := s.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastLoginCalls++
	if s.UpdateLoginErr != nil {
		return s.UpdateLoginErr
	}
	r, ok := s.records[id]
	if !ok {
		return user.ErrNotFound
	}
	t := at
	r.LastLogin = &t
	return nil
}

func (s *MemStore) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return false, false, s.FindErr
	}
	var usernameTaken, emailTaken bool
	for _, r := range s.records {
		usernameTaken = usernameTaken || strings.EqualFold(r.Username, username)
		emailTaken = emailTaken || strings.EqualFold(r.Email, email)
	}
	return usernameTaken, emailTaken, nil
}

func (s *MemStore) Create(ctx context.Context, r *user.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, existing := range s.records {
		if strings.EqualFold(existing.Username, r.Username) {
			return user.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, r.Email) {
			return user.ErrEmailTaken
		}
	}
	cp := *r
	s.records[r.ID] = &cp
	return nil
}
