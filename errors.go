package auth

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized   = "auth_unauthorized"
	TextCodeTokenExpired   = "auth_token_expired"
	TextCodeTokenInvalid   = "auth_token_invalid"
	TextCodeTokenMalformed = "auth_token_malformed"
	TextCodeRefreshMissing = "auth_refresh_token_missing"
	TextCodeRefreshInvalid = "auth_refresh_token_invalid"
	TextCodeRefreshExpired = "auth_refresh_token_expired"
)

// ErrUnauthorized is returned when a request carries no usable credential.
var ErrUnauthorized = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when an access token is past its expiry.
var ErrTokenExpired = errors.New("access token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid is returned when an access token fails verification.
var ErrTokenInvalid = errors.New("access token invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token string cannot be parsed at all.
var ErrTokenMalformed = errors.New("access token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshMissing is returned when a rotation request has a blank token.
var ErrRefreshMissing = errors.New("refresh token required", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshMissing).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshInvalid is returned when no user holds the presented refresh
// token: never issued, already rotated away, or plain wrong.
var ErrRefreshInvalid = errors.New("refresh token invalid", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshExpired is returned when the stored refresh token is past its
// expiry or has no expiry recorded.
var ErrRefreshExpired = errors.New("refresh token expired", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshExpired).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = stderrors.New("identity not found")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

func hasTextCode(err error, textCode string) bool {
	var rich *errors.Error
	if stderrors.As(err, &rich) && rich != nil {
		return rich.TextCode == textCode
	}
	return false
}
