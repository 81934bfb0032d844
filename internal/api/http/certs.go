package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/event-soft/eventsoft-backend/internal/certs"
	"github.com/event-soft/eventsoft-backend/internal/rbac"
)

// GET /events/{eventID}/certificates/eligibility?kind=P|E&subject_id=N
// Without subject_id the caller checks themselves. Callers holding only
// certs:eligibility-own may not name another subject.
func EligibilityHandler(elig *certs.Eligibility, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		kind := certs.Kind(r.URL.Query().Get("kind"))
		var subjectID int64
		if raw := r.URL.Query().Get("subject_id"); raw != "" {
			subjectID, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "bad subject_id", http.StatusBadRequest)
				return
			}
			if !rbac.Allowed(rbac.RoleFromContext(r.Context()), "certs:manage") {
				caller, err := callerID(r, users)
				if err != nil || caller != subjectID {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}
		} else {
			subjectID, err = callerID(r, users)
			if err != nil {
				http.Error(w, "unknown caller", http.StatusUnauthorized)
				return
			}
		}

		var res certs.Result
		switch kind {
		case certs.KindParticipation, certs.KindAward:
			res, err = elig.Participant(r.Context(), eventID, subjectID)
		case certs.KindEvaluator:
			res, err = elig.Evaluator(r.Context(), eventID, subjectID)
		default:
			http.Error(w, "kind must be P, E or PREMIO", http.StatusBadRequest)
			return
		}
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /events/{eventID}/certificates/manifest?kind=...&subject_id=N&subject_id=M
// Award manifests come through POST because they carry tuples.
func ManifestHandler(manifests *certs.Manifests) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		kind := certs.Kind(r.URL.Query().Get("kind"))
		if kind == certs.KindAward {
			http.Error(w, "award manifests require POST /certificates/emit with tuples", http.StatusBadRequest)
			return
		}
		var subjects []int64
		for _, raw := range r.URL.Query()["subject_id"] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "bad subject_id", http.StatusBadRequest)
				return
			}
			subjects = append(subjects, id)
		}
		entries, err := manifests.Build(r.Context(), eventID, kind, nil, subjects)
		if err != nil {
			fail(w, err)
			return
		}
		if entries == nil {
			entries = []certs.ManifestEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// POST /events/{eventID}/certificates/emit
func EmitCertificatesHandler(svc *certs.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		var req struct {
			Kind      certs.Kind         `json:"kind"`
			Tuples    []certs.AwardTuple `json:"tuples,omitempty"`
			Subjects  []int64            `json:"subjects,omitempty"`
			Confirmed bool               `json:"confirmed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if !certs.ValidKind(req.Kind) {
			http.Error(w, "kind must be P, E or PREMIO", http.StatusBadRequest)
			return
		}
		res, err := svc.Emit(r.Context(), eventID, req.Kind, req.Tuples, req.Subjects, req.Confirmed)
		if err != nil {
			fail(w, err)
			return
		}
		status := http.StatusOK
		if res.ConfirmationRequired {
			status = http.StatusAccepted
		}
		writeJSON(w, status, res)
	}
}
