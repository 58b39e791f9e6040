// Package identity implements authentication and the ownership rule.
//
// Credential verification lives here: passwords are bcrypt-hashed at
// registration and compared at login, and successful logins are issued a
// signed JWT carrying the user id. The rest of the core never sees
// credentials; it accepts only an already-verified user id.
//
// AuthorizeOwnership is a pure function, deliberately not a method carrying
// ambient state: every mutating playlist path calls it first and fails
// closed on false.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/repositories"
	"github.com/harmonia-fm/harmonia/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// Claims carries the registered JWT claims plus the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// Service owns user accounts and credential verification.
type Service struct {
	users    *repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *log.Logger
}

// NewService creates an identity service signing tokens with the given secret.
func NewService(users *repositories.UserRepository, secret []byte, tokenTTL time.Duration, logger *log.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a new user with a bcrypt-hashed credential.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("%w: display name is required", shared.ErrInvalidArgument)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	user := models.NewUser(0, email, displayName, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("user registered", "id", user.ID(), "email", email)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user id with a signed
// token. An unknown email and a wrong password both report ErrAuthFailed, so
// a caller cannot probe which accounts exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", "", shared.ErrAuthFailed
		}
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.CredentialHash()), []byte(password)); err != nil {
		return "", "", shared.ErrAuthFailed
	}

	token, err := s.generateToken(user.ID())
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return user.ID(), token, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.Get(ctx, id)
}

// DeleteUser soft-deletes a user and cascades to their playlists.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// generateToken signs a JWT carrying the user id.
func (s *Service) generateToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	})

	return token.SignedString(s.secret)
}

// VerifyToken validates a signed token and extracts the user id.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", shared.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", shared.ErrInvalidToken
	}

	return claims.UserID, nil
}

// AuthorizeOwnership reports whether the user owns the playlist. Pure; the
// caller decides what denial means.
func AuthorizeOwnership(userID string, playlist *models.Playlist) bool {
	return userID != "" && playlist != nil && playlist.OwnerID() == userID
}
