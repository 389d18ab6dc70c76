// Package handlers turns HTTP requests into service calls.
//
// A handler stays thin:
//  1. parse the request (JSON or multipart form) into a request struct
//  2. call the service
//  3. write the result through pkg.JSON or pkg.Error
//
// Handlers hold no business rules and never touch the database.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/pkg/ratelimit"
	"github.com/akinalp/shopapi/services"
)

// AuthHandler serves the account endpoints.
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.Limiter
	clientIPs    *ratelimit.IPResolver
}

// NewAuthHandler is the constructor. A nil loginLimiter disables throttling.
// clientIPs picks the key attempts are counted under; nil keys on the TCP
// peer.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.Limiter, clientIPs *ratelimit.IPResolver) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		clientIPs:    clientIPs,
	}
}

// Register godoc
// POST /api/register
// Body: { "name", "email", "username", "password" }
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, resp)
}

// Login godoc
// POST /api/login
// Body: { "email" | "username" | "login", "password" }
//
// Attempts are counted per client IP. Past the limit the handler answers 429
// with Retry-After until the window ends; a successful login clears the count.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIPs.ClientIP(r)
	if h.loginLimiter != nil {
		if ok, wait := h.loginLimiter.Allow(ip); !ok {
			retryAfter := ratelimit.RetryAfterSeconds(wait)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
				fmt.Sprintf("too many login attempts, please try again in %s",
					ratelimit.FormatRetryMessage(retryAfter)))
			return
		}
	}

	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, resp)
}

// Profile godoc
// GET /api/profile
// Requires the auth middleware.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	profile, err := h.authService.Profile(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}

// UpdateProfile godoc
// PUT /api/update-profile
// Body: any subset of { "name", "email", "username", "password" }
// Requires the auth middleware.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	updated, err := h.authService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, updated)
}
