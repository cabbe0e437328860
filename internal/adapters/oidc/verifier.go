// Package oidc validates bearer tokens issued by an OpenID Connect provider.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

const (
	defaultCacheTTL = 24 * time.Hour
	clockSkew       = time.Minute
	warmUpTimeout   = 10 * time.Second
)

var errNotConfigured = errors.New("authentication is not configured: issuer URL and audience are required")

type Config struct {
	IssuerURL string
	Audience  string
	CacheTTL  time.Duration
}

// Claims holds the profile claims read from an access or ID token.
type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
}

func (c *Claims) Validate(ctx context.Context) error { return nil }

// Verifier is built once per process. The first Verify resolves the discovery
// document and signing keys; a configuration error is remembered forever,
// while a failed key fetch is retried on the next call.
type Verifier struct {
	cfg Config

	mu        sync.Mutex
	validator *validator.Validator
	initErr   error
}

var _ ports.TokenVerifier = (*Verifier)(nil)

func NewVerifier(cfg Config) *Verifier {
	cfg.IssuerURL = strings.TrimSpace(cfg.IssuerURL)
	cfg.Audience = strings.TrimSpace(cfg.Audience)
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Verifier{cfg: cfg}
}

func (v *Verifier) ensure(ctx context.Context) (*validator.Validator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.validator != nil {
		return v.validator, nil
	}
	if v.initErr != nil {
		return nil, v.initErr
	}

	if v.cfg.IssuerURL == "" || v.cfg.Audience == "" {
		v.initErr = errNotConfigured
		return nil, v.initErr
	}
	issuerURL, err := url.Parse(v.cfg.IssuerURL)
	if err != nil || issuerURL.Scheme == "" || issuerURL.Host == "" {
		v.initErr = fmt.Errorf("authentication is not configured: invalid issuer URL %q", v.cfg.IssuerURL)
		return nil, v.initErr
	}

	provider := jwks.NewCachingProvider(issuerURL, v.cfg.CacheTTL)

	warmCtx, cancel := context.WithTimeout(ctx, warmUpTimeout)
	defer cancel()
	if _, err := provider.KeyFunc(warmCtx); err != nil {
		return nil, domain.Unavailable("identity provider is unavailable", err)
	}

	val, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{v.cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &Claims{} }),
		validator.WithAllowedClockSkew(clockSkew),
	)
	if err != nil {
		v.initErr = fmt.Errorf("authentication is not configured: %w", err)
		return nil, v.initErr
	}
	v.validator = val
	return val, nil
}

// Verify checks signature, issuer, audience and expiry. Token problems are
// Unauthenticated, a token without a subject is Forbidden.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*ports.TokenIdentity, error) {
	val, err := v.ensure(ctx)
	if err != nil {
		return nil, err
	}

	token, err := val.ValidateToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || strings.Contains(err.Error(), "expired") {
			return nil, &domain.Error{Kind: domain.KindUnauthenticated, Message: "token has expired", Err: err}
		}
		return nil, &domain.Error{Kind: domain.KindUnauthenticated, Message: "invalid token", Err: err}
	}

	claims, ok := token.(*validator.ValidatedClaims)
	if !ok || claims == nil {
		return nil, domain.Unauthenticatedf("invalid token")
	}
	if strings.TrimSpace(claims.RegisteredClaims.Subject) == "" {
		return nil, domain.Forbiddenf("token has no subject")
	}

	id := &ports.TokenIdentity{Subject: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*Claims); ok && custom != nil {
		id.Email = strings.TrimSpace(custom.Email)
		id.FirstName = strings.TrimSpace(custom.GivenName)
		id.LastName = strings.TrimSpace(custom.FamilyName)
		if id.FirstName == "" && id.LastName == "" && custom.Name != "" {
			first, last, _ := strings.Cut(strings.TrimSpace(custom.Name), " ")
			id.FirstName, id.LastName = first, strings.TrimSpace(last)
		}
	}
	return id, nil
}
