package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/nomina-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

const managerAccessMessage = "Manager or owner access required"

// RequireManager requires manager or owner role. Approving and paying a
// period are restricted to these roles.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, managerAccessMessage)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.Forbidden(w, managerAccessMessage)
			return
		}

		role := Role(roleStr)
		if role != RoleManager && role != RoleOwner {
			response.Forbidden(w, managerAccessMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}
