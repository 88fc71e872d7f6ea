// Package session caches the signed-in user across restarts through a Storage.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"tienda/internal/models"

	"github.com/rs/zerolog/log"
)

// Key is the storage key of the cached session record.
const Key = "currentUser"

// User is the session record returned by login.
type User struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Surname        string          `json:"surname"`
	Email          string          `json:"email"`
	Role           string          `json:"role"`
	DefaultAddress *models.Address `json:"default_address"`
	Token          string          `json:"token,omitempty"`
}

// valid reports whether the record carries the identity fields.
func (u *User) valid() bool {
	return u != nil && u.ID != 0 && u.Role != ""
}

// Store is the process-wide identity cache.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	user    *User
	loading bool
}

// New returns a Store that is still loading; call Init to read the cached record.
func New(storage Storage) *Store {
	return &Store{storage: storage, loading: true}
}

// Open creates and initializes a Store.
func Open(storage Storage) (*Store, error) {
	s := New(storage)
	return s, s.Init()
}

// Init loads the cached record once. Malformed or incomplete records are purged
// and the store starts signed out.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	raw, ok, err := s.storage.Get(Key)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.valid() {
		log.Warn().Err(err).Msg("discarding malformed cached session")
		if rmErr := s.storage.Remove(Key); rmErr != nil {
			return fmt.Errorf("purge session: %w", rmErr)
		}
		return nil
	}
	s.user = &u
	return nil
}

// Login replaces the identity and persists it.
func (s *Store) Login(u User) error {
	if !u.valid() {
		return fmt.Errorf("session record needs an id and a role")
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(Key, string(raw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.user = &u
	return nil
}

// Logout forgets the identity and removes the persisted record.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return s.storage.Remove(Key)
}

// User returns a copy of the current identity, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Role returns the identity's role, or "" when signed out.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Loading is true until Init has run.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
