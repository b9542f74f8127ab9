package wishlistapi

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal returns the authenticated user's email from the request
// context, or "" when the request is unauthenticated.
func Principal(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject in the request context.
func RequireAuth(verifier interface {
	Verify(token string) (string, error)
}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(req.Context(), principalKey, principal)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
