// Package auth implements login, logout and the navigation guard on top of
// the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ams-studio/ams/pkg/client"
	"github.com/ams-studio/ams/pkg/logging"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/session"
)

var (
	// ErrInvalidInput is returned when mail or password fail validation.
	ErrInvalidInput = errors.New("enter a valid email and password")
	// ErrInvalidCredentials is returned when the backend rejects the login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotSaved is returned when the session could not be read back after login.
	ErrSessionNotSaved = errors.New("session was not saved")
	// ErrNotLoggedIn is returned by Guard.Require for an unauthenticated session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Authenticator exchanges credentials for a raw token.
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials) (string, error)
}

// Navigator leaves the current screen for the login screen.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service performs login and logout.
type Service struct {
	authn Authenticator
	store *session.Store
	log   *zap.Logger
}

// NewService creates a Service.
func NewService(a Authenticator, store *session.Store, log *zap.Logger) *Service {
	return &Service{authn: a, store: store, log: logging.OrNop(log)}
}

// Login authenticates, then replaces the stored token and profile.
func (s *Service) Login(ctx context.Context, mail, password string) (models.Profile, error) {
	creds := models.Credentials{Mail: strings.TrimSpace(mail), Password: password}
	if err := validate.Struct(creds); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	token, err := s.authn.Authenticate(ctx, creds)
	if err != nil {
		var ae *client.AuthError
		if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
			return models.Profile{}, ErrInvalidCredentials
		}
		return models.Profile{}, fmt.Errorf("login: %w", err)
	}

	bearer := BearerToken(token)
	claims, err := DecodeClaims(bearer)
	if err != nil {
		return models.Profile{}, fmt.Errorf("login: %w", err)
	}
	profile := models.ProfileFromClaims(claims, creds.Mail)

	if err := s.store.SetToken(ctx, bearer); err != nil {
		return models.Profile{}, err
	}
	if err := s.store.SetProfile(ctx, profile); err != nil {
		s.clear(ctx)
		return models.Profile{}, err
	}

	gotToken, err := s.store.Token(ctx)
	if err != nil {
		s.clear(ctx)
		return models.Profile{}, err
	}
	_, ok, err := s.store.Profile(ctx)
	if err != nil {
		s.clear(ctx)
		return models.Profile{}, err
	}
	if gotToken != bearer || !ok {
		s.clear(ctx)
		return models.Profile{}, ErrSessionNotSaved
	}

	s.log.Info("logged in", zap.String("email", creds.Mail), zap.String("role", profile.Role))
	return profile, nil
}

// Logout clears the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *Service) clear(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("clear session", zap.Error(err))
	}
}

// Guard decides whether a protected screen may be shown.
type Guard struct {
	store *session.Store
	nav   Navigator
	log   *zap.Logger
	now   func() time.Time
}

// NewGuard creates a Guard. nav may be nil.
func NewGuard(store *session.Store, nav Navigator, log *zap.Logger) *Guard {
	return &Guard{store: store, nav: nav, log: logging.OrNop(log), now: time.Now}
}

// Check reports whether token and profile are both stored and the token has
// not expired. Any partial or expired session is cleared.
func (g *Guard) Check(ctx context.Context) (bool, error) {
	token, err := g.store.Token(ctx)
	if err != nil {
		return false, err
	}
	_, hasProfile, err := g.store.Profile(ctx)
	if err != nil {
		return false, err
	}

	ok := token != "" && hasProfile
	if ok {
		claims, err := DecodeClaims(token)
		switch {
		case err != nil:
			g.log.Warn("stored token is unreadable", zap.Error(err))
			ok = false
		case claims.Expired(g.now()):
			g.log.Info("stored token expired", zap.Time("exp", claims.Expiry()))
			ok = false
		}
	}
	if ok {
		return true, nil
	}
	if err := g.store.Clear(ctx); err != nil {
		return false, err
	}
	return false, nil
}

// Require is Check that navigates to login and returns ErrNotLoggedIn when
// the session is not valid.
func (g *Guard) Require(ctx context.Context) error {
	ok, err := g.Check(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if g.nav != nil {
			g.nav.ToLogin()
		}
		return ErrNotLoggedIn
	}
	return nil
}

// Current returns the stored profile and token claims.
func Current(ctx context.Context, store *session.Store) (models.Profile, models.Claims, error) {
	profile, ok, err := store.Profile(ctx)
	if err != nil {
		return models.Profile{}, models.Claims{}, err
	}
	if !ok {
		return models.Profile{}, models.Claims{}, ErrNotLoggedIn
	}
	token, err := store.Token(ctx)
	if err != nil {
		return models.Profile{}, models.Claims{}, err
	}
	claims, err := DecodeClaims(token)
	if err != nil {
		return profile, models.Claims{}, err
	}
	return profile, claims, nil
}
