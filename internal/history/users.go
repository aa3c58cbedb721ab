// internal/history/users.go
//
// Account rows: creation with bcrypt hashing, lookup, and password checks.

package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrUserNotFound  = errors.New("user not found")
)

// User matches the users table shape.
type User struct {
	ID           string `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
	GamesPlayed  int    `db:"games_played" json:"gamesPlayed"`
	Wins         int    `db:"wins" json:"wins"`
	Streak       int    `db:"streak" json:"streak"`
}

// CheckPassword is a bcrypt verifier.
func (u *User) CheckPassword(pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) == nil
}

// CreateUser validates input, checks uniqueness, hashes password, and inserts a new user.
func (s *Store) CreateUser(ctx context.Context, username, pw string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.GetContext(ctx, &exists, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check username: %w", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           NewID(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if _, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES (:id, :username, :password_hash, :created_at)`, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UserByUsername loads a user case-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, `SELECT * FROM users WHERE lower(username)=lower(?)`, strings.TrimSpace(username))
}

// UserByID loads a user by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `SELECT * FROM users WHERE id=?`, id)
}

func (s *Store) getUser(ctx context.Context, q string, arg string) (*User, error) {
	var u User
	if err := s.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// NewID creates a 22-char URL-safe, crypto-random identifier (no padding).
func NewID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
