package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the read side of the users table.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Service issues session tokens and tracks the set of tokens issued by
// this process. The set is the source of truth for authorization: a
// token is valid only while its entry exists, so a restart logs every
// client out.
type Service struct {
	store  CredentialStore
	secret []byte

	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewService(store CredentialStore, secret string) *Service {
	return &Service{
		store:  store,
		secret: []byte(secret),
		tokens: make(map[string]struct{}),
	}
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// Login verifies the supplied password against the stored hash and, on
// success, mints a signed token and registers it in the valid set. The
// error is identical for unknown users and wrong passwords.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !verifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	token, err := s.issueToken(user.Username)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
	return token, nil
}

// verifyPassword accepts bcrypt hashes written by the Go provisioning
// path and legacy unsalted SHA-256 hex left over from the MySQL trigger.
func verifyPassword(hash, password string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	sum := sha256.Sum256([]byte(password))
	hexSum := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(hexSum), []byte(strings.ToLower(hash))) == 1
}

func (s *Service) issueToken(username string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// TokenValid reports membership in the issued set. The signature is not
// re-checked here: a forged token can never have entered the set.
func (s *Service) TokenValid(token string) bool {
	s.mu.RLock()
	_, ok := s.tokens[token]
	s.mu.RUnlock()
	return ok
}
