// Package auth manages the user registry: registration, login and
// password changes. Passwords are stored as salted SHA-256 digests.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valutatrade/hub/ledger"
	"github.com/valutatrade/hub/market"
	"github.com/valutatrade/hub/store"
)

const (
	usersKey        = "users"
	minPasswordLen  = 4
	saltBytes       = 8
	defaultCurrency = market.Hub
)

// ErrAuthentication is returned when a password does not match. It is
// deliberately uninformative.
var ErrAuthentication = errors.New("invalid username or password")

// UserNotFoundError reports a login attempt for an unknown username.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

// User is a registered account. The password digest and salt travel with
// the record; plaintext passwords are never stored.
type User struct {
	ID             int64     `json:"user_id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	Salt           string    `json:"salt"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// VerifyPassword reports whether password matches the stored digest.
func (u *User) VerifyPassword(password string) bool {
	digest := hashPassword(password, u.Salt)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(u.HashedPassword)) == 1
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func newSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Service stores users in the JSON file store and provisions a portfolio
// for every new account. All registry mutations serialize on one lock.
type Service struct {
	store  *store.Store
	ledger *ledger.Ledger
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService wires the user registry to the store and the ledger. A nil
// logger falls back to the default.
func NewService(st *store.Store, l *ledger.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		ledger: l,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) loadUsers() ([]User, error) {
	var users []User
	if _, err := s.store.LoadJSON(usersKey, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (s *Service) saveUsers(users []User) error {
	if err := s.store.SaveJSON(usersKey, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Register creates a new account and its portfolio with an empty USD
// wallet. Usernames are unique; a taken name is a validation error.
func (s *Service) Register(username, password string) (*User, error) {
	username, err := market.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", market.ErrValidation, minPasswordLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	var nextID int64 = 1
	for _, u := range users {
		if u.Username == username {
			return nil, fmt.Errorf("%w: username %q is already taken", market.ErrValidation, username)
		}
		if u.ID >= nextID {
			nextID = u.ID + 1
		}
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	user := User{
		ID:             nextID,
		Username:       username,
		HashedPassword: hashPassword(password, salt),
		Salt:           salt,
		RegisteredAt:   s.now(),
	}

	if err := s.saveUsers(append(users, user)); err != nil {
		return nil, err
	}
	if err := s.ledger.WithPortfolio(user.ID, func(p *ledger.Portfolio) error {
		p.EnsureWallet(defaultCurrency)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("provision portfolio: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", username)
	return &user, nil
}

// Login verifies the credentials and returns the account.
func (s *Service) Login(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if !users[i].VerifyPassword(password) {
			s.logger.Warn("login failed", "username", username)
			return nil, ErrAuthentication
		}
		s.logger.Info("user logged in", "user_id", users[i].ID, "username", username)
		return &users[i], nil
	}
	return nil, &UserNotFoundError{Username: username}
}

// Lookup finds an account by username without checking a password.
func (s *Service) Lookup(username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, &UserNotFoundError{Username: username}
}

// ChangePassword verifies the old password and replaces it, rotating the
// salt.
func (s *Service) ChangePassword(userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", market.ErrValidation, minPasswordLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID != userID {
			continue
		}
		if !users[i].VerifyPassword(oldPassword) {
			return ErrAuthentication
		}
		salt, err := newSalt()
		if err != nil {
			return err
		}
		users[i].Salt = salt
		users[i].HashedPassword = hashPassword(newPassword, salt)
		if err := s.saveUsers(users); err != nil {
			return err
		}
		s.logger.Info("password changed", "user_id", userID)
		return nil
	}
	return &UserNotFoundError{Username: fmt.Sprintf("id %d", userID)}
}
