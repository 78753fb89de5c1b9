package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
//
// context.WithValue keys of a package-private type cannot collide with (or
// be shadowed by) values set by any other package — only this package can
// construct a contextKey, so only this package can touch the userID slot.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth is the middleware guarding every entry/media/AI route.
//
// It resolves the session token, validates it, and stores the userID in the
// request context. Missing, malformed, tampered, or expired tokens all
// produce the same 401 — the response never says which check failed.
//
// TOKEN TRANSPORT:
// The frontend sends `Authorization: Bearer <jwt>`; a `token` cookie is
// accepted as a fallback so media URLs opened in a plain browser tab still
// authenticate. Header wins when both are present.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context.
//
// Returns (id, true) when RequireAuth ran and validated a token, and
// ("", false) otherwise. Handlers behind RequireAuth can rely on the former,
// but still check — a handler accidentally mounted outside the middleware
// must fail closed, not operate as nobody.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user ID, exactly as
// RequireAuth would set it. For tests that call handlers directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// extractUserID finds the session token on the request and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tokens.Validate(strings.TrimSpace(raw))
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie — no credential anywhere on the request
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
