// Package middleware holds the layers every request passes through before it
// reaches a handler.
//
// A middleware is a func(next http.Handler) http.Handler. It does its own
// work (check a token, start a timer, attach a request id) and then calls
// next, or writes an error and stops the chain by not calling it.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/akinalp/shopapi/handlers"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/pkg/logger"
	"github.com/akinalp/shopapi/repository"
	"github.com/akinalp/shopapi/services"
)

const bearerPrefix = "Bearer "

// AuthMiddleware verifies bearer tokens.
type AuthMiddleware struct {
	tokens   services.TokenService
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewAuthMiddleware is the constructor.
func NewAuthMiddleware(tokens services.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
		log:      logger.Get().Named("auth"),
	}
}

// Require rejects the request with 401 unless it carries a valid token for
// an existing user.
//
// Header format: Authorization: Bearer <token>
//
// Steps:
//  1. read the header and strip the "Bearer " prefix
//  2. verify the token and take the user id from its subject
//  3. load the user, since a valid token may outlive its account
//  4. put the user into the request context and call next
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			m.log.Debug(headerFailureMessage(err),
				zap.String("path", r.URL.Path),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			)
			pkg.Error(w, err)
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			m.log.Warn("token rejected",
				zap.String("path", r.URL.Path),
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.Error(err),
			)
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), userID)
		if errors.Is(err, pkg.ErrNotFound) {
			m.log.Warn("token subject has no account", zap.String("user_id", userID))
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// The hash must not travel further than this point.
		user.PasswordHash = ""

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}

// bearerToken extracts the raw token. The three header failures are kept
// apart so clients and logs can tell them from a bad token.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", pkg.ErrMissingAuthHeader
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", pkg.ErrInvalidAuthScheme
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", pkg.ErrEmptyToken
	}
	return token, nil
}

func headerFailureMessage(err error) string {
	switch {
	case errors.Is(err, pkg.ErrMissingAuthHeader):
		return "missing authorization header"
	case errors.Is(err, pkg.ErrInvalidAuthScheme):
		return "authorization header is not a bearer token"
	default:
		return "empty bearer token"
	}
}
