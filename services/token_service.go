// Package services is the business logic layer.
//
// A service sits between the HTTP handlers and the repositories. Every rule
// lives here: validation, password hashing, token issuance, uniqueness
// handling, image lifecycle. Services never see http.Request or write SQL;
// they take domain models and talk to repository interfaces.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// DefaultIssuer is used when TokenConfig.Issuer is empty.
const DefaultIssuer = "shopapi"

// TokenConfig is injected into the token service at construction.
// The secret comes from configuration only; there is no built-in default.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	// Issue signs a token whose subject is userID.
	Issue(userID string) (string, error)
	// Verify checks signature, issuer and expiry and returns the subject.
	// Errors: pkg.ErrTokenMalformed, pkg.ErrTokenInvalidSignature,
	// pkg.ErrTokenExpired.
	Verify(token string) (string, error)
}

type tokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService validates cfg and builds the service.
func NewTokenService(cfg TokenConfig) (TokenService, error) {
	return newTokenService(cfg, time.Now)
}

func newTokenService(cfg TokenConfig, now func() time.Time) (*tokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}

	return &tokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    now,
		// HS256 only: a token signed with anything else, "none" included,
		// fails as an invalid signature.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

func (s *tokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(tokenString string) (string, error) {
	claims := &models.TokenClaims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})

	if err != nil {
		return "", classifyTokenError(err)
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}

	return claims.Subject, nil
}

// ErrMissingSubject is a structurally valid token without a subject.
var ErrMissingSubject = fmt.Errorf("%w: missing subject", pkg.ErrTokenMalformed)

// classifyTokenError maps jwt errors onto the three verification outcomes.
// jwt verifies the signature before any claim, so a forged token that is also
// expired reports as an invalid signature, not as expired.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return pkg.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return pkg.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return pkg.ErrTokenExpired
	default:
		return pkg.ErrTokenInvalidSignature
	}
}
