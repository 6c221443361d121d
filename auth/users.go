// ABOUTME: JSON-backed user store with salted iterative password hashing
// ABOUTME: Handles credential verification and profile upserts for dashboard sign-in
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/wolfcarports/salesdesk/models"
)

const iterations = 200_000

// Store persists users as a JSON array on disk. Writes are serialized; the
// file is small enough that whole-file rewrites are fine.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() ([]models.User, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users file: %w", err)
	}
	return users, nil
}

func (s *Store) save(users []models.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func hashPassword(password string, salt []byte) string {
	dk := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)
	return hex.EncodeToString(dk)
}

// SetPassword sets or resets a user's password, creating the user with rep
// defaults when the email is unknown.
func (s *Store) SetPassword(email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	hash := hashPassword(password, salt)

	for i := range users {
		if users[i].Email == email {
			users[i].Salt = hex.EncodeToString(salt)
			users[i].PasswordHash = hash
			return s.save(users)
		}
	}

	displayName := email
	if at := strings.Index(email, "@"); at > 0 {
		displayName = strings.ToUpper(email[:1]) + email[1:at]
	}
	users = append(users, models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		Role:         models.RoleRep,
		OwnerValue:   models.SharedPoolOwner,
		RepPhone:     "",
		Salt:         hex.EncodeToString(salt),
		PasswordHash: hash,
	})
	return s.save(users)
}

// VerifyPassword returns the user on a credential match, nil otherwise.
// Unknown emails and users without a password both fail quietly.
func (s *Store) VerifyPassword(email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := &users[i]
		if u.Email != email || u.Salt == "" || u.PasswordHash == "" {
			continue
		}
		salt, err := hex.DecodeString(u.Salt)
		if err != nil {
			continue
		}
		if hmac.Equal([]byte(hashPassword(password, salt)), []byte(u.PasswordHash)) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

// GetUser returns the user by email, or nil when unknown.
func (s *Store) GetUser(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			out := users[i]
			return &out, nil
		}
	}
	return nil, nil
}

// ListUsers returns every stored user.
func (s *Store) ListUsers() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// UpsertUser inserts or replaces a user by email, preserving stored
// credentials when the incoming record carries none.
func (s *Store) UpsertUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Email == user.Email {
			if user.Salt == "" {
				user.Salt = users[i].Salt
				user.PasswordHash = users[i].PasswordHash
			}
			if user.ID == uuid.Nil {
				user.ID = users[i].ID
			}
			users[i] = user
			return s.save(users)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	users = append(users, user)
	return s.save(users)
}
