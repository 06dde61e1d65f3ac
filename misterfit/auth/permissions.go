package auth

import (
	"fmt"
	"misterfit_platform/misterfit/schema"
	"net/http"
)

func requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, fmt.Sprintf("user %v does not have permission to access this endpoint", user.Id), http.StatusForbidden)
		}
		return http.HandlerFunc(hfn)
	}
}

func TrainerOnly() func(http.Handler) http.Handler {
	return requireRoles(schema.RoleTrainer, schema.RoleAdmin)
}

func AdminOnly() func(http.Handler) http.Handler {
	return requireRoles(schema.RoleAdmin)
}
