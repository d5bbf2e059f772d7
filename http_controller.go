package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the login and refresh endpoints on the router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.
		Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth.refresh.post")
}

type AuthControllerRoutes struct {
	Login   string
	Refresh string
}

type AuthController struct {
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:   "/auth/kakao",
			Refresh: "/auth/token/refresh",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

// WithControllerAuthenticator sets the Authenticator the controller drives.
func WithControllerAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerRoutes overrides the default route paths.
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	AccessToken string `form:"accessToken" json:"accessToken"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.AccessToken,
			validation.Required,
		),
	)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return WriteError(ctx, a.Logger, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.Logger, errors.Wrap(err, errors.CategoryValidation, "provider access token required").
			WithCode(errors.CodeBadRequest))
	}

	result, err := a.Auther.Login(ctx.Context(), payload.AccessToken)
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return WriteError(ctx, a.Logger, err)
	}

	return WriteData(ctx, result)
}

// RefreshPost rotates a refresh token. Blank tokens are not a validation
// error here: the service classifies them so the client sees the same 401
// family as invalid and expired tokens.
func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("refresh parse payload: %v", err)
		return WriteError(ctx, a.Logger, errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(errors.CodeBadRequest))
	}

	result, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		a.Logger.Error("refresh error: %v", err)
		return WriteError(ctx, a.Logger, err)
	}

	return WriteData(ctx, result)
}
