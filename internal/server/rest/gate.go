package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/capacitanet/internal/common"
)

type ctxKey string

const principalKey ctxKey = "principal"

// publicPaths are reachable without a token. A path matches when it equals
// an entry or continues it with "/".
var publicPaths = []string{
	"/health",
	"/api/v1/users/register",
	"/api/v1/users/login",
}

// TokenValidator resolves a bearer token to its subject.
type TokenValidator interface {
	Validate(token string) (string, error)
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Gate rejects requests to protected paths that lack a valid bearer token and
// puts the token subject in the request context. It never touches storage.
func Gate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get(common.AuthorizationHeaderName)
			token, ok := strings.CutPrefix(header, common.BearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				writeStatus(w, http.StatusUnauthorized, "authorization required")
				return
			}

			subject, err := tokens.Validate(strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					writeStatus(w, http.StatusUnauthorized, "token expired")
					return
				}
				writeStatus(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated username, if any.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey).(string)
	return p, ok && p != ""
}
