package auth

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/nonggle/go-auth/middleware/tokengate"
)

// ContextEnricherAdapter adapts tokengate.AuthClaims to auth.AuthClaims and
// stores them in the standard context for downstream usage.
func ContextEnricherAdapter(c context.Context, claims tokengate.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	return WithClaimsContext(c, authClaims)
}

// Protected builds the request gate from the shared configuration. Requests
// to exempt paths pass through untouched, everything else must carry a valid
// bearer access token issued by the given validator. A nil validator makes
// the gate verify tokens against the configured signing key directly.
func Protected(cfg Config, validator TokenValidator, exemptPaths ...string) router.MiddlewareFunc {
	return ProtectedWithValidators(cfg, exemptPaths, validator)
}

// ProtectedWithValidators gates requests behind a validator chain. The
// validators run in order until one accepts, so a deployment can honor
// tokens from more than one issuer during a signing key rollover. With no
// validators the gate falls back to the configured signing key.
func ProtectedWithValidators(cfg Config, exemptPaths []string, validators ...TokenValidator) router.MiddlewareFunc {
	gateCfg := tokengate.Config{
		ExemptPaths: exemptPaths,
		SigningKey: tokengate.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		ContextEnricher: ContextEnricherAdapter,
	}

	live := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			live = append(live, v)
		}
	}

	switch len(live) {
	case 0:
		// leave gateCfg.TokenValidator nil, the gate uses the signing key
	case 1:
		gateCfg.TokenValidator = tokenValidatorAdapter{live[0]}
	default:
		gateCfg.TokenValidator = tokenValidatorAdapter{NewMultiTokenValidator(live...)}
	}

	return tokengate.New(gateCfg)
}

// tokenValidatorAdapter bridges the root TokenValidator to the gate facing
// interface without an import cycle.
type tokenValidatorAdapter struct {
	validator TokenValidator
}

func (a tokenValidatorAdapter) Validate(tokenString string) (tokengate.AuthClaims, error) {
	claims, err := a.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
