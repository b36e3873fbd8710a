// Package jwt decodes and verifies the signed, expiring identity tokens
// presented to gatehouse.
//
// Tokens are HS256 JWTs signed with a shared secret. The subject is read
// from the "id" claim and falls back to the registered "sub" claim. An
// "exp" claim is mandatory. Issuing tokens is not this package's job.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: malformed
// input, bad signature, wrong algorithm, wrong issuer, expiry, or a
// missing subject. The wrapped cause is for logs only.
var ErrInvalidToken = errors.New("invalid token")

// Config holds the verifier configuration.
type Config struct {
	// Secret is the HMAC signing secret (required, non-empty).
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Leeway is the clock skew tolerated when checking exp. Default: 0.
	Leeway time.Duration

	// Now overrides the clock (useful for testing). Default: time.Now.
	Now func() time.Time
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire form of the token body.
type tokenClaims struct {
	ID string `json:"id,omitempty"`
	jwtlib.RegisteredClaims
}

// Verifier checks token signatures and expiry. It holds only immutable
// configuration and is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwtlib.Parser
}

// New creates a Verifier. The secret is copied so later mutation of the
// caller's slice cannot affect verification.
func New(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("jwt: secret is required")
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Verifier{
		secret: secret,
		parser: jwtlib.NewParser(parserOptions(cfg)...),
	}, nil
}

// parserOptions builds JWT parser options based on the configuration.
func parserOptions(cfg Config) []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	}

	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwtlib.WithLeeway(cfg.Leeway))
	}
	if cfg.Now != nil {
		opts = append(opts, jwtlib.WithTimeFunc(cfg.Now))
	}

	return opts
}

// Verify parses the token, checks its signature and expiry, and returns
// its claims. All failures wrap ErrInvalidToken.
func (v *Verifier) Verify(token string) (Claims, error) {
	parsed, err := v.parser.ParseWithClaims(token, &tokenClaims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	subject := tc.ID
	if subject == "" {
		subject = tc.Subject
	}
	if subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	claims := Claims{Subject: subject}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}

	return claims, nil
}
