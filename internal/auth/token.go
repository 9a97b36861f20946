// Package auth checks the bearer credential that callers of the analysis
// API present. The check is a shape check by default; when a signing
// secret is configured the bearer must also be a valid HS256 JWT.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim of tokens minted by IssueToken.
const Issuer = "promptlens"

// Errors returned by Verifier.Verify.
var (
	ErrMissingCredential = errors.New("missing or invalid authorization header")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Config holds bearer credential settings.
type Config struct {
	// TokenPrefix, when set, must start every bearer token.
	TokenPrefix    string `mapstructure:"token_prefix"`
	MinTokenLength int    `mapstructure:"min_token_length"`
	// JWTSecret enables HS256 signature verification of the bearer.
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DefaultConfig accepts any non-empty bearer token.
func DefaultConfig() Config {
	return Config{MinTokenLength: 1}
}

// Claims holds the JWT payload of a caller token.
type Claims struct {
	jwt.RegisteredClaims
}

// Verifier validates bearer credentials.
type Verifier struct {
	prefix string
	minLen int
	secret []byte
}

// NewVerifier creates a Verifier from cfg.
func NewVerifier(cfg Config) *Verifier {
	v := &Verifier{
		prefix: cfg.TokenPrefix,
		minLen: max(cfg.MinTokenLength, 1),
	}
	if cfg.JWTSecret != "" {
		v.secret = []byte(cfg.JWTSecret)
	}
	return v
}

// SignsTokens reports whether a JWT secret is configured.
func (v *Verifier) SignsTokens() bool {
	return v.secret != nil
}

// VerifyHeader validates an Authorization header value of the form
// "Bearer <token>".
func (v *Verifier) VerifyHeader(header string) (*Claims, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, ErrMissingCredential
	}
	return v.Verify(strings.TrimSpace(token))
}

// Verify validates a bare bearer token. Claims are nil when no JWT secret
// is configured.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	if len(token) < v.minLen {
		return nil, fmt.Errorf("%w: token shorter than %d characters", ErrInvalidCredential, v.minLen)
	}
	if v.prefix != "" && !strings.HasPrefix(token, v.prefix) {
		return nil, fmt.Errorf("%w: token must start with %q", ErrInvalidCredential, v.prefix)
	}
	if v.secret == nil {
		return nil, nil
	}

	parsed, err := jwt.ParseWithClaims(strings.TrimPrefix(token, v.prefix), &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidCredential)
	}
	return claims, nil
}

// IssueToken mints a signed caller token for subject. A zero ttl issues a
// token without expiry.
func (v *Verifier) IssueToken(subject string, ttl time.Duration) (string, error) {
	if v.secret == nil {
		return "", errors.New("auth.jwt_secret is not configured")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   Issuer,
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return v.prefix + signed, nil
}
