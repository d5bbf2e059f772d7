package kakao

import (
	stderrors "errors"
	"fmt"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeProviderUnauthorized means the provider rejected the credential.
	TextCodeProviderUnauthorized = "provider_unauthorized"
	// TextCodeProviderForbidden means the credential is valid but lacks consent.
	TextCodeProviderForbidden = "provider_forbidden"
	// TextCodeProviderBadInput means we refused to call the provider at all.
	TextCodeProviderBadInput = "provider_bad_input"
	// TextCodeProviderUnavailable means the provider could not be reached or
	// answered with a server error.
	TextCodeProviderUnavailable = "provider_unavailable"
	// TextCodeProviderMalformed means the provider answered 200 with a body
	// we could not use.
	TextCodeProviderMalformed = "provider_malformed_response"
	// TextCodeProviderUnknown covers every other provider response.
	TextCodeProviderUnknown = "provider_unknown_error"
)

var (
	// ErrProviderUnauthorized is the normalized form of a 401 from Kakao.
	ErrProviderUnauthorized = errors.New(
		"Provider rejected the access token",
		errors.CategoryAuth,
	).WithTextCode(TextCodeProviderUnauthorized).
		WithCode(errors.CodeUnauthorized)

	// ErrProviderForbidden is the normalized form of a 403 from Kakao.
	ErrProviderForbidden = errors.New(
		"Provider denied access for this token",
		errors.CategoryAuthz,
	).WithTextCode(TextCodeProviderForbidden).
		WithCode(errors.CodeForbidden)

	// ErrProviderBadInput is returned before any network call when the
	// credential is unusable, e.g. blank.
	ErrProviderBadInput = errors.New(
		"Provider credential is missing or unusable",
		errors.CategoryBadInput,
	).WithTextCode(TextCodeProviderBadInput).
		WithCode(errors.CodeBadRequest)

	// ErrProviderUnavailable covers transport failures and 5xx answers.
	ErrProviderUnavailable = errors.New(
		"Identity provider is unavailable",
		errors.CategoryInternal,
	).WithTextCode(TextCodeProviderUnavailable).
		WithCode(errors.CodeInternal)

	// ErrProviderMalformed covers successful responses we cannot decode.
	ErrProviderMalformed = errors.New(
		"Identity provider returned an unusable response",
		errors.CategoryInternal,
	).WithTextCode(TextCodeProviderMalformed).
		WithCode(errors.CodeInternal)

	// ErrProviderUnknown covers everything the other classes do not.
	ErrProviderUnknown = errors.New(
		"Identity provider request failed",
		errors.CategoryInternal,
	).WithTextCode(TextCodeProviderUnknown).
		WithCode(errors.CodeInternal)
)

// ProviderError captures normalized provider response details.
type ProviderError struct {
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
	Raw         map[string]any
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}

	scope := "kakao"
	if e.Operation != "" {
		scope = fmt.Sprintf("kakao %s", e.Operation)
	}

	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}

	return meta
}

func wrapProviderError(base *errors.Error, operation string, err error) error {
	if base == nil {
		return err
	}

	meta := map[string]any{"provider": "kakao"}
	if operation != "" {
		meta["operation"] = operation
	}

	var perr *ProviderError
	if stderrors.As(err, &perr) && perr != nil {
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	} else if err != nil {
		meta["error"] = err.Error()
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if stderrors.As(err, &rich) && rich != nil {
		return rich.TextCode == code
	}
	return false
}

// IsUnauthorized reports whether err is a provider rejection of the credential.
func IsUnauthorized(err error) bool {
	return hasTextCode(err, TextCodeProviderUnauthorized)
}

// IsForbidden reports whether err is a provider consent or permission denial.
func IsForbidden(err error) bool {
	return hasTextCode(err, TextCodeProviderForbidden)
}

// IsUnavailable reports whether err is a transport failure or 5xx answer.
func IsUnavailable(err error) bool {
	return hasTextCode(err, TextCodeProviderUnavailable)
}

// IsMalformedResponse reports whether the provider answer could not be used.
func IsMalformedResponse(err error) bool {
	return hasTextCode(err, TextCodeProviderMalformed)
}
