package store

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned by Authenticate for an unknown user or a
// wrong password.
var ErrBadCredentials = errors.New("store: invalid username or password")

// EnsureUser creates username with password unless the user already exists.
// It reports whether a user was created.
func (s *Store) EnsureUser(username, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`INSERT OR IGNORE INTO users (username, password_hash) VALUES (?, ?)`, username, string(hash))
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Authenticate checks password against the stored hash for username and
// returns the user id.
func (s *Store) Authenticate(username, password string) (int64, error) {
	s.mu.RLock()
	var (
		id   int64
		hash string
	)
	err := s.db.QueryRow(`SELECT id, password_hash FROM users WHERE username = ?`, username).Scan(&id, &hash)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrBadCredentials
		}
		return 0, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, ErrBadCredentials
	}
	return id, nil
}
