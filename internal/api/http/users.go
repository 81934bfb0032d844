package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/event-soft/eventsoft-backend/internal/user"
)

type userRow struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"` // plaintext, hashed before storage
}

// POST /admin/users
// Accepts either a raw JSON array or a multipart file= upload (CSV or
// JSON), mirroring how event staff export their spreadsheets.
func BulkUpsertUsersHandler(store *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			buf := make([]byte, 1)
			if _, err := f.Read(buf); err != nil {
				http.Error(w, "empty file", http.StatusBadRequest)
				return
			}
			if s, ok := f.(io.Seeker); ok {
				_, _ = s.Seek(0, io.SeekStart)
			}
			if buf[0] == '[' || buf[0] == '{' {
				if err := json.NewDecoder(f).Decode(&rows); err != nil {
					http.Error(w, "bad json", http.StatusBadRequest)
					return
				}
			} else {
				rs, err := parseUsersCSV(f)
				if err != nil {
					http.Error(w, "bad csv: "+err.Error(), http.StatusBadRequest)
					return
				}
				rows = rs
			}
		} else {
			if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
				http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
				return
			}
		}

		upserted := 0
		for _, row := range rows {
			if row.Username == "" {
				continue
			}
			hash := ""
			if row.Password != "" {
				h, err := bcrypt.GenerateFromPassword([]byte(row.Password), bcrypt.DefaultCost)
				if err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				hash = string(h)
			}
			u := user.User{
				Username: row.Username,
				FullName: row.FullName,
				Email:    row.Email,
				Role:     row.Role,
			}
			if _, err := store.Upsert(r.Context(), u, hash); err != nil {
				fail(w, err)
				return
			}
			upserted++
		}
		writeJSON(w, http.StatusOK, map[string]any{"upserted": upserted})
	}
}

// GET /admin/users
func ListUsersHandler(store *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		if list == nil {
			list = []user.User{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseUsersCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	get := func(rec []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	var out []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, userRow{
			Username: get(rec, "username"),
			FullName: get(rec, "full_name"),
			Email:    get(rec, "email"),
			Role:     get(rec, "role"),
			Password: get(rec, "password"),
		})
	}
	return out, nil
}
