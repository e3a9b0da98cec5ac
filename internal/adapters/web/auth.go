package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voucher-engine/internal/app"

	"github.com/golang-jwt/jwt/v5"
)

type sessionKey struct{}

// sessionFromContext returns the session stored in ctx, or nil.
func sessionFromContext(ctx context.Context) *app.Session {
	v, _ := ctx.Value(sessionKey{}).(*app.Session)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username,omitempty"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for s that expires after ttl.
func IssueToken(secret string, s app.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID:    s.UserID,
		Username:  s.Username,
		CompanyID: s.CompanyID,
		Role:      s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth is chi middleware that validates the auth_token cookie or a Bearer token
// and injects the Session into the request context. Returns 401 if the token is absent
// or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			raw = cookie.Value
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		if claims.UserID <= 0 || claims.CompanyID <= 0 {
			writeError(w, r, "token carries no user or company", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, &app.Session{
			UserID:    claims.UserID,
			Username:  claims.Username,
			CompanyID: claims.CompanyID,
			Role:      claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// me handles GET /api/auth/me and returns the current session.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	writeJSON(w, s)
}
