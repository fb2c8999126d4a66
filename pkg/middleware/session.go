package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionIDKey contextKeyType = "session_id"

// SessionCookieName is the cookie carrying the cart session identifier.
const SessionCookieName = "cart_session"

// Session assigns a cart session ID to every request. The ID comes from the
// cart_session cookie when present and is generated (and set as a cookie)
// otherwise, so anonymous visitors get a working cart on first touch. The
// cookie lifetime should match the cart TTL so both expire together.
func Session(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				if _, err := uuid.Parse(c.Value); err == nil {
					sessionID = c.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext extracts the cart session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
