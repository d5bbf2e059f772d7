package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/nonggle/go-auth"
)

func newController(auther auth.Authenticator) *auth.AuthController {
	return auth.NewAuthController(auth.WithControllerAuthenticator(auther))
}

func TestNewAuthControllerRequiresAuthenticator(t *testing.T) {
	assert.Panics(t, func() {
		auth.NewAuthController()
	})
}

func TestLoginPost(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	userID := uuid.New()
	auther.On("Login", mock.Anything, "kakao-token").Return(&auth.LoginResult{
		UserID:       userID,
		AccessToken:  "access.jwt",
		RefreshToken: "refresh-1",
	}, nil).Once()

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.LoginRequest)
		payload.AccessToken = "kakao-token"
	}).Return(nil)

	var envelope auth.APIResponse
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		envelope = args.Get(1).(auth.APIResponse)
	}).Return(nil)

	err := controller.LoginPost(ctx)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	result, ok := envelope.Data.(*auth.LoginResult)
	require.True(t, ok)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, "access.jwt", result.AccessToken)
	assert.Equal(t, "refresh-1", result.RefreshToken)

	auther.AssertExpectations(t)
}

func TestLoginPostMissingAccessToken(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).Return(nil)

	var status int
	var envelope auth.APIResponse
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
		envelope = args.Get(1).(auth.APIResponse)
	}).Return(nil)

	err := controller.LoginPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, 400, status)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, 400, envelope.Error.Code)

	auther.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLoginPostProviderRejection(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	auther.On("Login", mock.Anything, "bad-token").Return(nil, auth.ErrUnauthorized).Once()

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.LoginRequest)
		payload.AccessToken = "bad-token"
	}).Return(nil)

	var status int
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
	}).Return(nil)

	err := controller.LoginPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, 401, status)
}

func TestRefreshPost(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	userID := uuid.New()
	auther.On("Refresh", mock.Anything, "refresh-1").Return(&auth.LoginResult{
		UserID:       userID,
		AccessToken:  "access.jwt",
		RefreshToken: "refresh-2",
	}, nil).Once()

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.RefreshRequest)
		payload.RefreshToken = "refresh-1"
	}).Return(nil)

	var envelope auth.APIResponse
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		envelope = args.Get(1).(auth.APIResponse)
	}).Return(nil)

	err := controller.RefreshPost(ctx)
	require.NoError(t, err)

	result, ok := envelope.Data.(*auth.LoginResult)
	require.True(t, ok)
	assert.Equal(t, "refresh-2", result.RefreshToken)
}

// A blank refresh token is not a 400: the service classifies it with the
// same 401 family as invalid and expired tokens.
func TestRefreshPostBlankToken(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	auther.On("Refresh", mock.Anything, "").Return(nil, auth.ErrRefreshMissing).Once()

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Return(nil)

	var status int
	var envelope auth.APIResponse
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
		envelope = args.Get(1).(auth.APIResponse)
	}).Return(nil)

	err := controller.RefreshPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, 401, status)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "refresh token required", envelope.Error.Message)
}

func TestRefreshPostExpired(t *testing.T) {
	auther := new(MockAuthenticator)
	controller := newController(auther)

	auther.On("Refresh", mock.Anything, "stale").Return(nil, auth.ErrRefreshExpired).Once()

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*auth.RefreshRequest)
		payload.RefreshToken = "stale"
	}).Return(nil)

	var status int
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status = args.Get(0).(int)
	}).Return(nil)

	err := controller.RefreshPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, 401, status)
}
