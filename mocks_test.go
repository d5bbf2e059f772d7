package auth_test

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/nonggle/go-auth"
)

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetSigningMethod() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetRefreshExpiration() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetTokenLookup() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetTokenExpiration").Return(time.Hour)
	mockConfig.On("GetRefreshExpiration").Return(14 * 24 * time.Hour)
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	return mockConfig
}

// MockIdentityResolver implements auth.IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, providerCredential string) (*auth.RemoteIdentity, error) {
	args := m.Called(ctx, providerCredential)
	identity, _ := args.Get(0).(*auth.RemoteIdentity)
	return identity, args.Error(1)
}

// MockUsers implements auth.Users for the methods the authenticator touches.
// The embedded repository interface stays nil; calling anything from it in a
// test is a bug and panics.
type MockUsers struct {
	mock.Mock
	repository.Repository[*auth.User]
}

func (m *MockUsers) FindByProviderUserID(ctx context.Context, providerUserID string) (*auth.User, error) {
	args := m.Called(ctx, providerUserID)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) FindByRefreshToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) FindOrCreateByProviderID(ctx context.Context, providerUserID, nickname string) (*auth.User, error) {
	args := m.Called(ctx, providerUserID, nickname)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) ReplaceRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) RotateRefreshToken(ctx context.Context, userID uuid.UUID, expected, token string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, expected, token, expiresAt)
	return args.Bool(0), args.Error(1)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, providerCredential string) (*auth.LoginResult, error) {
	args := m.Called(ctx, providerCredential)
	result, _ := args.Get(0).(*auth.LoginResult)
	return result, args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, refreshToken string) (*auth.LoginResult, error) {
	args := m.Called(ctx, refreshToken)
	result, _ := args.Get(0).(*auth.LoginResult)
	return result, args.Error(1)
}
