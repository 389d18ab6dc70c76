package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akinalp/shopapi/handlers"
	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/services"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) Create(context.Context, *models.User) error { return nil }
func (s *stubUserRepo) Update(context.Context, *models.User) error { return nil }

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

func newAuthFixture(t *testing.T) (*AuthMiddleware, services.TokenService) {
	t.Helper()
	tokens, err := services.NewTokenService(services.TokenConfig{Secret: "test-secret"})
	require.NoError(t, err)

	repo := &stubUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "ada", PasswordHash: "secret-hash"},
	}}
	return NewAuthMiddleware(tokens, repo), tokens
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) pkg.APIResponse {
	t.Helper()
	var resp pkg.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware_HeaderFailures(t *testing.T) {
	m, _ := newAuthFixture(t)
	called := false
	h := m.Require(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", pkg.ErrMissingAuthHeader},
		{"wrong scheme", "Basic dXNlcjpwYXNz", pkg.ErrInvalidAuthScheme},
		{"lower-case scheme", "bearer abc", pkg.ErrInvalidAuthScheme},
		{"empty token", "Bearer    ", pkg.ErrEmptyToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.Equal(t, pkg.StatusError, resp.Status)
			assert.Equal(t, tc.want.Error(), resp.Message)
		})
	}
	assert.False(t, called)
}

func TestBearerToken_DistinctErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := bearerToken(req)
	assert.ErrorIs(t, err, pkg.ErrMissingAuthHeader)

	req.Header.Set("Authorization", "Token abc")
	_, err = bearerToken(req)
	assert.ErrorIs(t, err, pkg.ErrInvalidAuthScheme)

	req.Header.Set("Authorization", "Bearer ")
	_, err = bearerToken(req)
	assert.ErrorIs(t, err, pkg.ErrEmptyToken)

	req.Header.Set("Authorization", "Bearer  abc ")
	token, err := bearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	assert.NotEqual(t, headerFailureMessage(pkg.ErrMissingAuthHeader), headerFailureMessage(pkg.ErrInvalidAuthScheme))
	assert.NotEqual(t, headerFailureMessage(pkg.ErrInvalidAuthScheme), headerFailureMessage(pkg.ErrEmptyToken))
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	m, tokens := newAuthFixture(t)
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	var seen *models.User
	h := m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = handlers.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)
	assert.Empty(t, seen.PasswordHash)
}

func TestAuthMiddleware_BadTokens(t *testing.T) {
	m, tokens := newAuthFixture(t)
	h := m.Require(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not be called")
	}))

	orphan, err := tokens.Issue("deleted-user")
	require.NoError(t, err)

	for _, token := range []string{"not.a.token", orphan} {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "existing-request-id-123", seen)
	assert.Equal(t, "existing-request-id-123", rec.Header().Get(RequestIDHeader))
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	statuses := []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError}
	for _, status := range statuses {
		h := RequestID(Logger(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/getProducts", nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/api/getProducts", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestLogger_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Logger(zap.New(core), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, int64(5), fields["body_size"])
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
		<-r.Context().Done()
		pkg.Error(w, r.Context().Err())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, ok)
	assert.False(t, deadline.IsZero())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	passthrough := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	passthrough.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
