// Package identity signs users up and in, and turns bearer tokens into a
// domain.Identity. Tokens are HS256 JWTs whose jti is stored as a session row,
// so signing out revokes the token before it expires.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/session"
	"storefront/internal/validate"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrAuthRequired)
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrAuthRequired)
)

// Users is the account store the service needs.
type Users interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Sessions stores issued token ids.
type Sessions interface {
	Create(ctx context.Context, s session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

// Service handles signup, login, token verification and sign-out.
type Service struct {
	users       Users
	sessions    Sessions
	tokens      TokenConfig
	logger      zerolog.Logger
	now         func() time.Time
	passwordMin int
}

// New creates a Service.
func New(users Users, sessions Sessions, tokens TokenConfig, logger zerolog.Logger) *Service {
	return &Service{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Signup registers a new, non-admin account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Password = strings.TrimSpace(in.Password)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, domain.User{Email: in.Email, PasswordHash: hash})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID).Msg("identity: signed up")
	return u, nil
}

// Login validates credentials, records a session and returns an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, Token, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, Token{}, ErrInvalidCredentials
		}
		return nil, Token{}, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, Token{}, ErrInvalidCredentials
	}

	now := s.now()
	jti := uuid.NewString()
	signed, expiresAt, err := mintToken(s.tokens, now, u.ID, u.IsAdmin, jti)
	if err != nil {
		return nil, Token{}, err
	}
	if err := s.sessions.Create(ctx, session.Session{ID: jti, UserID: u.ID, ExpiresAt: expiresAt}); err != nil {
		return nil, Token{}, fmt.Errorf("%w: create session: %w", domain.ErrStoreWrite, err)
	}
	s.logger.Info().Str("user_id", u.ID).Str("session_id", jti).Msg("identity: token issued")
	return u, Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// Verify resolves a bearer token to the caller's identity. The admin flag is
// read from the account, not the token, so a revoked admin loses access at once.
func (s *Service) Verify(ctx context.Context, raw string) (domain.Identity, error) {
	now := s.now()
	claims, err := parseToken(s.tokens, now, raw)
	if err != nil {
		s.logger.Debug().Err(err).Msg("identity: token rejected")
		return domain.Identity{}, ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, ErrInvalidToken
		}
		return domain.Identity{}, fmt.Errorf("%w: load session: %w", domain.ErrStoreRead, err)
	}
	if sess.UserID != claims.UserID || !now.Before(sess.ExpiresAt) {
		return domain.Identity{}, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, ErrInvalidToken
		}
		return domain.Identity{}, fmt.Errorf("%w: load user: %w", domain.ErrStoreRead, err)
	}
	return domain.Identity{UserID: u.ID, IsAdmin: u.IsAdmin, SessionID: sess.ID}, nil
}

// SignOut revokes the caller's session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, identity domain.Identity) error {
	if !identity.Authenticated() || identity.SessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, identity.SessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: delete session: %w", domain.ErrStoreWrite, err)
	}
	s.logger.Info().Str("user_id", identity.UserID).Str("session_id", identity.SessionID).Msg("identity: signed out")
	return nil
}

// Profile returns the account behind identity.
func (s *Service) Profile(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if !identity.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	return s.users.GetByID(ctx, identity.UserID)
}

// HashPassword bcrypt-hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", min))
	}
	hasLetter := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return domain.NewValidationError("password", "must contain at least 1 letter and 1 number")
	}
	return nil
}
