package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/cache"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

var (
	// ErrInvalidCredentials is returned for any sign-in failure. It stays
	// generic on purpose: the caller never learns whether the username or
	// the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrProfileNotFound means a valid token references a user that no
	// longer exists. Callers must force sign-out when they see it.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidToken means the session token failed verification or
	// expired.
	ErrInvalidToken = errors.New("invalid or expired session")

	// ErrWeakPassword rejects passwords shorter than the minimum.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrEmptyDisplayName rejects blank display names.
	ErrEmptyDisplayName = errors.New("display name required")
)

const minPasswordLength = 6

// Session is the result of a successful sign-in.
type Session struct {
	Token string
	User  core.User
}

// Service authenticates members and serves their profiles through an LRU
// cache so the hot path avoids a database round trip per request.
type Service struct {
	users    UserStore
	profiles *cache.LRUCache[core.User]
	logger   *log.Logger
	secret   string
	ttl      time.Duration
}

func NewService(users UserStore, secret string, ttl time.Duration, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *Service {
	return &Service{
		users:    users,
		profiles: cache.NewLRUCache[core.User](cacheSize, cacheTTL),
		logger:   logger,
		secret:   secret,
		ttl:      ttl,
	}
}

// ProfileCache exposes the cache for registration with a cache.Manager.
func (s *Service) ProfileCache() *cache.LRUCache[core.User] {
	return s.profiles
}

// SignIn verifies the credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, user.ID, string(user.Role), s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	s.profiles.Set(user.ID, user)
	s.logger.InfoContext(ctx, "member signed in", log.FieldUserID, user.ID, log.FieldRole, string(user.Role))

	return Session{Token: token, User: user}, nil
}

// CurrentUser resolves a session token to the member's current profile.
func (s *Service) CurrentUser(ctx context.Context, token string) (core.User, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return core.User{}, ErrInvalidToken
	}

	if user, ok := s.profiles.Get(claims.UserID); ok {
		return user, nil
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrProfileNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up profile: %w", err)
	}

	s.profiles.Set(user.ID, user)
	return user, nil
}

// SignOut drops the cached profile for the session's user. An unparseable
// token is a no-op: the session is gone either way.
func (s *Service) SignOut(token string) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return
	}
	s.profiles.Delete(claims.UserID)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	// The cached profile carries the old hash now
	s.profiles.Delete(user.ID)
	s.logger.InfoContext(ctx, "member changed password", log.FieldUserID, user.ID)
	return nil
}

// UpdateDisplayName renames the member as shown on ledger audit fields.
// Existing transactions keep the name that was recorded at write time.
func (s *Service) UpdateDisplayName(ctx context.Context, token, displayName string) (core.User, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return core.User{}, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return core.User{}, ErrEmptyDisplayName
	}

	if err := s.users.UpdateUserDisplayName(ctx, user.ID, displayName); err != nil {
		return core.User{}, fmt.Errorf("store display name: %w", err)
	}

	user.DisplayName = displayName
	s.profiles.Set(user.ID, user)
	return user, nil
}
