package http

import (
	"net/http"
	"strconv"

	"github.com/event-soft/eventsoft-backend/internal/audit"
)

// GET /admin/audit?after=N&limit=M
func AuditLogHandler(log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := log.Since(r.Context(), after, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []audit.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
