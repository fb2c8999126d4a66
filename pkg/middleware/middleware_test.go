package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func okValidator(claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		if token == "good" {
			return claims, nil
		}
		return nil, errors.New("bad token")
	}
}

func TestAuthMissingHeader(t *testing.T) {
	h := Auth(okValidator(&Claims{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	h := Auth(okValidator(&Claims{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/orders", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInjectsClaims(t *testing.T) {
	claims := &Claims{UserID: "u-1", Email: "u@example.com", Role: "admin"}

	var gotUserID, gotEmail, gotRole string
	h := Auth(okValidator(claims))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/orders", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", gotUserID)
	assert.Equal(t, "u@example.com", gotEmail)
	assert.Equal(t, "admin", gotRole)
}

func TestRequireRole(t *testing.T) {
	claims := &Claims{UserID: "u-1", Role: "user"}

	h := Auth(okValidator(claims))(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})))

	req := httptest.NewRequest("DELETE", "/admin/products/1", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionAssignsCookie(t *testing.T) {
	var gotSessionID string
	h := Session(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/cart", nil))

	require.NotEmpty(t, gotSessionID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, gotSessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionReusesExistingCookie(t *testing.T) {
	const existing = "550e8400-e29b-41d4-a716-446655440000"

	var gotSessionID string
	h := Session(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: existing})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, existing, gotSessionID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionRejectsGarbageCookie(t *testing.T) {
	var gotSessionID string
	h := Session(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEqual(t, "not-a-uuid", gotSessionID)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestRecoveryReturns500(t *testing.T) {
	h := Recovery(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRequestLoggingSetsCorrelationID(t *testing.T) {
	h := RequestLogging(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestRequestLoggingPropagatesCorrelationID(t *testing.T) {
	h := RequestLogging(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", rec.Header().Get("X-Correlation-ID"))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigin(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com"},
		Environment:    "production",
	}
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
