// Package service implements the application's business logic on top of the
// repository, token, and event layers.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/osdatum/backend/internal/auth"
	"github.com/osdatum/backend/internal/domain"
	"github.com/osdatum/backend/internal/event"
	"github.com/osdatum/backend/internal/firebase"
	"github.com/osdatum/backend/internal/repository"
	apperrors "github.com/osdatum/backend/pkg/errors"
)

const bcryptCost = 12

// Exchange modes for Firebase ID tokens.
const (
	ModeRegister = "register"
	ModeLogin    = "login"
)

// FirebaseSession is the result of exchanging a Firebase ID token.
type FirebaseSession struct {
	Token     string
	ExpiresIn int
}

// AuthService handles registration, login, and token exchange.
type AuthService struct {
	users       repository.UserRepository
	tokens      *auth.TokenManager
	verifier    firebase.Verifier
	events      *event.Producer
	logger      *slog.Logger
	passwordTTL time.Duration
	firebaseTTL time.Duration
}

// NewAuthService creates the auth service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	verifier firebase.Verifier,
	events *event.Producer,
	logger *slog.Logger,
	passwordTTL, firebaseTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		verifier:    verifier,
		events:      events,
		logger:      logger,
		passwordTTL: passwordTTL,
		firebaseTTL: firebaseTTL,
	}
}

// Register creates a password-based account and returns a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperrors.Wrap(err, "hash password")
	}

	user := &domain.User{
		ID:               uuid.New().String(),
		Email:            email,
		Name:             name,
		PasswordHash:     string(hash),
		SubscriptionTier: domain.TierFree,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	s.events.PublishUserRegistered(ctx, user.ID, user.Email, "password")
	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return s.tokens.Issue(user.ID, user.Email, s.passwordTTL)
}

// Login verifies the credentials and returns a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.InvalidCredentials()
		}
		return "", err
	}

	// Accounts created through the identity bridge have no password.
	if user.PasswordHash == "" {
		return "", apperrors.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.InvalidCredentials()
	}

	return s.tokens.Issue(user.ID, user.Email, s.passwordTTL)
}

// ExchangeFirebaseToken validates a Firebase ID token and returns an internal
// session token. In register mode an absent account is created from the
// Firebase profile; in login mode an absent account is an error and nothing
// is created.
func (s *AuthService) ExchangeFirebaseToken(ctx context.Context, idToken, mode string) (*FirebaseSession, error) {
	if mode != ModeRegister && mode != ModeLogin {
		return nil, apperrors.InvalidInput("mode must be register or login")
	}

	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrTokenExpired):
			return nil, apperrors.InvalidToken("TOKEN_EXPIRED", "firebase token expired")
		case errors.Is(err, firebase.ErrTokenInvalid):
			return nil, apperrors.InvalidToken("TOKEN_INVALID", "firebase token invalid")
		default:
			return nil, apperrors.Upstream("could not verify firebase token", err)
		}
	}
	if profile.Email == "" {
		return nil, apperrors.InvalidToken("TOKEN_INVALID", "firebase token missing email")
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Existing account, proceed in either mode.
	case errors.Is(err, apperrors.ErrNotFound):
		if mode == ModeLogin {
			return nil, apperrors.New("NOT_REGISTERED", "user not registered", 401, apperrors.ErrUnauthenticated)
		}
		user = &domain.User{
			ID:               profile.UID,
			Email:            profile.Email,
			Name:             displayName(profile),
			Picture:          profile.Picture,
			ProviderID:       profile.UID,
			SubscriptionTier: domain.TierFree,
		}
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent register for the same email may have won.
			if errors.Is(err, apperrors.ErrConflict) {
				if user, err = s.users.GetByEmail(ctx, profile.Email); err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		} else {
			s.events.PublishUserRegistered(ctx, user.ID, user.Email, "firebase")
			s.logger.InfoContext(ctx, "user registered via firebase", slog.String("user_id", user.ID))
		}
	default:
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, s.firebaseTTL)
	if err != nil {
		return nil, err
	}
	return &FirebaseSession{
		Token:     token,
		ExpiresIn: int(s.firebaseTTL.Seconds()),
	}, nil
}

func displayName(p *firebase.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}
