package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arklim/orderflow-catalog/internal/infra/config"
)

var (
	// ErrTokenInvalid indicates the token failed signature or claim validation.
	ErrTokenInvalid = errors.New("security: invalid token")
	// ErrTokenExpired indicates the token was valid but has expired.
	ErrTokenExpired = errors.New("security: token expired")
)

// AccessClaims carries the identity information the catalog service consumes
// from tokens issued by the identity service.
type AccessClaims struct {
	Subject  string
	Username string
	Scopes   []string
}

// HasScope reports whether the token grants the given scope.
func (c AccessClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenVerifier validates HS256 bearer tokens. The catalog service never
// issues tokens; it only verifies what the identity service signed.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenVerifier constructs a verifier from explicit JWT settings.
func NewTokenVerifier(cfg config.JWTSettings) (*TokenVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &TokenVerifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for testing.
func (v *TokenVerifier) WithClock(now func() time.Time) *TokenVerifier {
	if now != nil {
		v.now = now
	}
	return v
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Verify parses and validates a raw token string and returns its claims.
func (v *TokenVerifier) Verify(raw string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrTokenInvalid)
	}

	return &AccessClaims{
		Subject:  claims.Subject,
		Username: claims.Username,
		Scopes:   strings.Fields(claims.Scope),
	}, nil
}
