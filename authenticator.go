package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is the access token lifetime used when the config
// does not set one.
const DefaultTokenExpiration = time.Hour

// DefaultRefreshExpiration is the refresh token lifetime used when the
// config does not set one.
const DefaultRefreshExpiration = 14 * 24 * time.Hour

// Auther orchestrates login and refresh rotation against the identity
// provider, the user directory, and the token service.
type Auther struct {
	resolver          IdentityResolver
	users             Users
	tokenService      TokenService
	refreshExpiration time.Duration
	logger            Logger
	timeFunc          func() time.Time
	newRefreshToken   func() string
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(resolver IdentityResolver, users Users, opts Config) *Auther {
	tokenExpiration := opts.GetTokenExpiration()
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	refreshExpiration := opts.GetRefreshExpiration()
	if refreshExpiration <= 0 {
		refreshExpiration = DefaultRefreshExpiration
	}

	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		tokenExpiration,
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		resolver:          resolver,
		users:             users,
		tokenService:      tokenService,
		refreshExpiration: refreshExpiration,
		logger:            defLogger{},
		timeFunc:          time.Now,
		newRefreshToken:   uuid.NewString,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service for issuing access tokens.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithTimeFunc overrides the clock used for refresh expiry checks.
func (s *Auther) WithTimeFunc(fn func() time.Time) *Auther {
	if fn != nil {
		s.timeFunc = fn
	}
	return s
}

// WithRefreshTokenFunc overrides refresh token generation, mostly for tests.
func (s *Auther) WithRefreshTokenFunc(fn func() string) *Auther {
	if fn != nil {
		s.newRefreshToken = fn
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login exchanges a provider credential for an access token and a fresh
// refresh token. Provider failures abort before any directory access. The
// refresh token rotates on every login, including repeat logins from a
// session that is still valid; any other session's refresh token stops
// working at that point.
func (s *Auther) Login(ctx context.Context, providerCredential string) (*LoginResult, error) {
	identity, err := s.resolver.Resolve(ctx, providerCredential)
	if err != nil {
		s.logger.Error("Login resolve identity error: %v", err)
		return nil, err
	}

	if identity == nil || identity.ID == "" {
		s.logger.Error("Login resolved identity is empty")
		return nil, ErrIdentityNotFound
	}

	user, err := s.users.FindOrCreateByProviderID(ctx, identity.ID, identity.Nickname)
	if err != nil {
		s.logger.Error("Login get or create user error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user record")
	}

	refreshToken := s.newRefreshToken()
	expiresAt := s.timeFunc().Add(s.refreshExpiration)

	if err := s.users.ReplaceRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		s.logger.Error("Login persist refresh token error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	accessToken, err := s.tokenService.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("Login issue access token error: %v", err)
		return nil, err
	}

	s.logger.Info("Login succeeded for user %s", user.ID.String())

	return &LoginResult{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh trades a refresh token for a new access token and a replacement
// refresh token. Single use: the presented token is invalidated whether or
// not another caller races us, so at most one of two concurrent rotations
// with the same token succeeds.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrRefreshMissing
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Error("Refresh lookup error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up refresh token")
	}

	if user == nil {
		return nil, ErrRefreshInvalid
	}

	if user.RefreshTokenExpired(s.timeFunc()) {
		return nil, ErrRefreshExpired
	}

	nextToken := s.newRefreshToken()
	expiresAt := s.timeFunc().Add(s.refreshExpiration)

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, nextToken, expiresAt)
	if err != nil {
		s.logger.Error("Refresh rotation error: %v", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to rotate refresh token")
	}

	if !rotated {
		// a concurrent rotation observed the token first
		return nil, ErrRefreshInvalid
	}

	accessToken, err := s.tokenService.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("Refresh issue access token error: %v", err)
		return nil, err
	}

	return &LoginResult{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: nextToken,
	}, nil
}
