/*
middleware.go - Request authentication

PURPOSE:
  Decodes the bearer token once per request and stashes the resulting
  auth.AuthContext in the request context. Handlers read it back with
  Identity(); they never touch the token themselves.

DEV MODE:
  With an empty signing secret the middleware injects a fixed development
  identity instead of rejecting, so the server runs locally without a
  token mint.

SEE ALSO:
  - auth: Token decode/sign
  - server.go: Middleware stack ordering
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/dealflow-engine/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// devIdentity is used when no signing secret is configured.
var devIdentity = auth.AuthContext{CompanyID: "dev-company", UserID: "dev-user"}

// Authenticator returns middleware that requires a valid bearer token.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), devIdentity)))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}

			identity, err := auth.Decode(token, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func withIdentity(ctx context.Context, identity auth.AuthContext) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity returns the authenticated identity for the request.
func Identity(ctx context.Context) auth.AuthContext {
	if identity, ok := ctx.Value(identityKey).(auth.AuthContext); ok {
		return identity
	}
	return auth.AuthContext{}
}
