package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/nonggle/go-auth"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first login creates the user and installs a refresh token", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		users := new(MockUsers)

		user := &auth.User{ID: uuid.New(), ProviderUserID: "9001", Nickname: "tester"}

		resolver.On("Resolve", ctx, "kakao-access-token").
			Return(&auth.RemoteIdentity{ID: "9001", Nickname: "tester"}, nil).Once()
		users.On("FindOrCreateByProviderID", ctx, "9001", "tester").Return(user, nil).Once()
		users.On("ReplaceRefreshToken", ctx, user.ID, "refresh-1", now.Add(14*24*time.Hour)).
			Return(nil).Once()

		authenticator := auth.NewAuthenticator(resolver, users, newMockConfig()).
			WithTimeFunc(func() time.Time { return now }).
			WithRefreshTokenFunc(func() string { return "refresh-1" })

		result, err := authenticator.Login(ctx, "kakao-access-token")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, user.ID, result.UserID)
		assert.Equal(t, "refresh-1", result.RefreshToken)
		assert.NotEmpty(t, result.AccessToken)

		// The issued access token is bound to the internal user id, never
		// the provider id.
		parsed, err := jwt.ParseWithClaims(result.AccessToken, &auth.AccessClaims{}, func(t *jwt.Token) (any, error) {
			return []byte("test-signing-key"), nil
		}, jwt.WithTimeFunc(func() time.Time { return now }))
		require.NoError(t, err)
		claims := parsed.Claims.(*auth.AccessClaims)
		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)

		resolver.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("repeat login rotates the refresh token", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		users := new(MockUsers)

		user := &auth.User{ID: uuid.New(), ProviderUserID: "9001"}

		resolver.On("Resolve", ctx, "kakao-access-token").
			Return(&auth.RemoteIdentity{ID: "9001"}, nil).Twice()
		users.On("FindOrCreateByProviderID", ctx, "9001", "").Return(user, nil).Twice()
		users.On("ReplaceRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).
			Return(nil).Twice()

		tokens := []string{"refresh-1", "refresh-2"}
		authenticator := auth.NewAuthenticator(resolver, users, newMockConfig()).
			WithRefreshTokenFunc(func() string {
				next := tokens[0]
				tokens = tokens[1:]
				return next
			})

		first, err := authenticator.Login(ctx, "kakao-access-token")
		require.NoError(t, err)

		second, err := authenticator.Login(ctx, "kakao-access-token")
		require.NoError(t, err)

		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		users.AssertExpectations(t)
	})

	t.Run("provider failure aborts before any directory access", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		users := new(MockUsers)

		providerErr := errors.New("provider unreachable")
		resolver.On("Resolve", ctx, "bad-token").Return(nil, providerErr).Once()

		authenticator := auth.NewAuthenticator(resolver, users, newMockConfig())

		result, err := authenticator.Login(ctx, "bad-token")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, providerErr)

		users.AssertNotCalled(t, "FindOrCreateByProviderID", mock.Anything, mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "ReplaceRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty resolved identity fails", func(t *testing.T) {
		resolver := new(MockIdentityResolver)
		users := new(MockUsers)

		resolver.On("Resolve", ctx, "odd-token").Return(&auth.RemoteIdentity{}, nil).Once()

		authenticator := auth.NewAuthenticator(resolver, users, newMockConfig())

		_, err := authenticator.Login(ctx, "odd-token")
		require.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newAuther := func(users *MockUsers) *auth.Auther {
		return auth.NewAuthenticator(new(MockIdentityResolver), users, newMockConfig()).
			WithTimeFunc(func() time.Time { return now }).
			WithRefreshTokenFunc(func() string { return "refresh-next" })
	}

	t.Run("valid token rotates and issues a new access token", func(t *testing.T) {
		users := new(MockUsers)

		expiresAt := now.Add(24 * time.Hour)
		user := (&auth.User{ID: uuid.New()}).UpdateRefreshToken("refresh-old", expiresAt)

		users.On("FindByRefreshToken", ctx, "refresh-old").Return(user, nil).Once()
		users.On("RotateRefreshToken", ctx, user.ID, "refresh-old", "refresh-next", now.Add(14*24*time.Hour)).
			Return(true, nil).Once()

		result, err := newAuther(users).Refresh(ctx, "refresh-old")
		require.NoError(t, err)

		assert.Equal(t, user.ID, result.UserID)
		assert.Equal(t, "refresh-next", result.RefreshToken)
		assert.NotEmpty(t, result.AccessToken)
		users.AssertExpectations(t)
	})

	t.Run("blank token is rejected before any lookup", func(t *testing.T) {
		users := new(MockUsers)

		_, err := newAuther(users).Refresh(ctx, "   ")
		require.ErrorIs(t, err, auth.ErrRefreshMissing)

		users.AssertNotCalled(t, "FindByRefreshToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		users := new(MockUsers)
		users.On("FindByRefreshToken", ctx, "never-issued").Return(nil, nil).Once()

		_, err := newAuther(users).Refresh(ctx, "never-issued")
		require.ErrorIs(t, err, auth.ErrRefreshInvalid)
	})

	t.Run("expired token is rejected without rotation", func(t *testing.T) {
		users := new(MockUsers)

		expiresAt := now.Add(-time.Minute)
		user := (&auth.User{ID: uuid.New()}).UpdateRefreshToken("refresh-old", expiresAt)
		users.On("FindByRefreshToken", ctx, "refresh-old").Return(user, nil).Once()

		_, err := newAuther(users).Refresh(ctx, "refresh-old")
		require.ErrorIs(t, err, auth.ErrRefreshExpired)

		users.AssertNotCalled(t, "RotateRefreshToken",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token without recorded expiry counts as expired", func(t *testing.T) {
		users := new(MockUsers)

		user := &auth.User{ID: uuid.New()}
		users.On("FindByRefreshToken", ctx, "refresh-old").Return(user, nil).Once()

		_, err := newAuther(users).Refresh(ctx, "refresh-old")
		require.ErrorIs(t, err, auth.ErrRefreshExpired)
	})

	t.Run("losing the rotation race is invalid", func(t *testing.T) {
		users := new(MockUsers)

		expiresAt := now.Add(24 * time.Hour)
		user := (&auth.User{ID: uuid.New()}).UpdateRefreshToken("refresh-old", expiresAt)

		users.On("FindByRefreshToken", ctx, "refresh-old").Return(user, nil).Once()
		users.On("RotateRefreshToken", ctx, user.ID, "refresh-old", "refresh-next", mock.Anything).
			Return(false, nil).Once()

		_, err := newAuther(users).Refresh(ctx, "refresh-old")
		require.ErrorIs(t, err, auth.ErrRefreshInvalid)
	})

	t.Run("directory failure surfaces as an internal error", func(t *testing.T) {
		users := new(MockUsers)
		users.On("FindByRefreshToken", ctx, "refresh-old").Return(nil, errors.New("db down")).Once()

		_, err := newAuther(users).Refresh(ctx, "refresh-old")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrRefreshInvalid)
	})
}
