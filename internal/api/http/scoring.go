package http

import (
	"encoding/json"
	"net/http"

	"github.com/event-soft/eventsoft-backend/internal/scoring"
)

// PUT /scores
// The evaluator is always the caller; scoring on someone's behalf is
// not a thing.
func PutScoreHandler(svc *scoring.Service, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CriterionID   int64 `json:"criterion_id"`
			ParticipantID int64 `json:"participant_id"`
			Value         int   `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		vid, err := callerID(r, users)
		if err != nil {
			http.Error(w, "unknown caller", http.StatusUnauthorized)
			return
		}
		sc := scoring.Score{
			EvaluatorID:   vid,
			CriterionID:   req.CriterionID,
			ParticipantID: req.ParticipantID,
			Value:         req.Value,
		}
		if err := svc.Put(r.Context(), sc); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

// DELETE /scores
func DeleteScoreHandler(svc *scoring.Service, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CriterionID   int64 `json:"criterion_id"`
			ParticipantID int64 `json:"participant_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		vid, err := callerID(r, users)
		if err != nil {
			http.Error(w, "unknown caller", http.StatusUnauthorized)
			return
		}
		if err := svc.Delete(r.Context(), vid, req.CriterionID, req.ParticipantID); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /events/{eventID}/scores/mine
// An evaluator's own scoring sheet for the event.
func MyScoresHandler(svc *scoring.Service, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		vid, err := callerID(r, users)
		if err != nil {
			http.Error(w, "unknown caller", http.StatusUnauthorized)
			return
		}
		list, err := svc.ByEvaluator(r.Context(), eventID, vid)
		if err != nil {
			fail(w, err)
			return
		}
		if list == nil {
			list = []scoring.Score{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
