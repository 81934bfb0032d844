package http

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	authmw "github.com/event-soft/eventsoft-backend/internal/auth/middleware"
)

// POST /users/change-password
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
			http.Error(w, "old_password and new_password required", http.StatusBadRequest)
			return
		}
		var hash string
		err := db.QueryRowContext(r.Context(),
			`SELECT password_hash FROM users WHERE username=$1`, sub).Scan(&hash)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)) != nil {
			http.Error(w, "old password does not match", http.StatusForbidden)
			return
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET password_hash=$1 WHERE username=$2`, string(newHash), sub); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"changed": true})
	}
}
