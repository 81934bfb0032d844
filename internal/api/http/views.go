package http

import (
	"net/http"

	"github.com/event-soft/eventsoft-backend/internal/evalengine"
	"github.com/event-soft/eventsoft-backend/internal/rbac"
)

// GET /events/{eventID}/podium[?format=csv]
func PodiumHandler(views *evalengine.Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		rows, err := views.Podium(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="podium.csv"`)
			if err := evalengine.WritePodiumCSV(w, rows); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		if rows == nil {
			rows = []evalengine.PodiumRow{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// GET /events/{eventID}/participants/{participantID}/detail[?format=csv]
// Callers holding only detail:view-own may read their own row only.
func DetailHandler(views *evalengine.Views, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		pid, err := urlID(r, "participantID")
		if err != nil {
			http.Error(w, "participantID required", http.StatusBadRequest)
			return
		}
		if !rbac.Allowed(rbac.RoleFromContext(r.Context()), "detail:view") {
			caller, err := callerID(r, users)
			if err != nil || caller != pid {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
		d, err := views.Detail(r.Context(), eventID, pid)
		if err != nil {
			fail(w, err)
			return
		}
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="detail.csv"`)
			if err := evalengine.WriteDetailCSV(w, d); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
