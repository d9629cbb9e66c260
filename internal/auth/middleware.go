package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/logging"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware guards handlers with bearer token verification.
type Middleware struct {
	jwt     *JWTManager
	onError ErrorWriter
}

func NewMiddleware(jwtManager *JWTManager, onError ErrorWriter) *Middleware {
	return &Middleware{jwt: jwtManager, onError: onError}
}

// Require rejects requests without a valid bearer token with 401.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.onError(w, r, apperr.Unauthenticated("authorization token required"))
			return
		}
		p, err := m.jwt.Verify(token)
		if err != nil {
			m.onError(w, r, apperr.Unauthenticated("invalid or expired token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// Optional attaches the principal when a valid token is present and
// otherwise lets the request through anonymously.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		p, err := m.jwt.Verify(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Msg("ignoring invalid token on public route")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}
