package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/nomina-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const invalidTokenMessage = "Invalid or missing access token"

// AuthRequired rejects requests whose verified token is missing or is not an
// access token. It runs after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, invalidTokenMessage)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
