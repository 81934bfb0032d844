package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
)

// POST /events/{eventID}/participants
// Self-registration: the caller becomes the participant. Admins may
// register someone else by passing participant_id.
func RegisterParticipantHandler(store inscription.Store, events event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		ev, err := events.Get(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if !ev.State.Mutable() {
			fail(w, event.ErrEventNotMutable)
			return
		}
		var req struct {
			ParticipantID int64  `json:"participant_id,omitempty"`
			IsGroup       bool   `json:"is_group,omitempty"`
			LeaderID      *int64 `json:"leader_id,omitempty"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		pid := req.ParticipantID
		if pid == 0 {
			pid, err = callerID(r, users)
			if err != nil {
				http.Error(w, "unknown caller", http.StatusUnauthorized)
				return
			}
		}
		p := inscription.ParticipantEvent{
			EventID:       eventID,
			ParticipantID: pid,
			SubmittedAt:   time.Now().UTC(),
			IsGroup:       req.IsGroup,
			LeaderID:      req.LeaderID,
		}
		id, err := store.RegisterParticipant(r.Context(), p)
		if err != nil {
			fail(w, err)
			return
		}
		p.ID = id
		writeJSON(w, http.StatusCreated, p)
	}
}

// POST /events/{eventID}/evaluators
func RegisterEvaluatorHandler(store inscription.Store, events event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		ev, err := events.Get(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if !ev.State.Mutable() {
			fail(w, event.ErrEventNotMutable)
			return
		}
		var req struct {
			EvaluatorID int64 `json:"evaluator_id,omitempty"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		vid := req.EvaluatorID
		if vid == 0 {
			vid, err = callerID(r, users)
			if err != nil {
				http.Error(w, "unknown caller", http.StatusUnauthorized)
				return
			}
		}
		v := inscription.EvaluatorEvent{EventID: eventID, EvaluatorID: vid, RegisteredAt: time.Now().UTC()}
		id, err := store.RegisterEvaluator(r.Context(), v)
		if err != nil {
			fail(w, err)
			return
		}
		v.ID = id
		writeJSON(w, http.StatusCreated, v)
	}
}

// POST /events/{eventID}/attendees
func RegisterAttendeeHandler(store inscription.Store, events event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		ev, err := events.Get(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if !ev.State.Mutable() {
			fail(w, event.ErrEventNotMutable)
			return
		}
		aid, err := callerID(r, users)
		if err != nil {
			http.Error(w, "unknown caller", http.StatusUnauthorized)
			return
		}
		a := inscription.AttendeeEvent{EventID: eventID, AttendeeID: aid, RegisteredAt: time.Now().UTC()}
		id, err := store.RegisterAttendee(r.Context(), a)
		if err != nil {
			fail(w, err)
			return
		}
		a.ID = id
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /events/{eventID}/participants
func ListParticipantsHandler(store inscription.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		list, err := store.ParticipantsForEvent(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if list == nil {
			list = []inscription.ParticipantEvent{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /events/{eventID}/evaluators
func ListEvaluatorsHandler(store inscription.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		list, err := store.EvaluatorsForEvent(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if list == nil {
			list = []inscription.EvaluatorEvent{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// PUT /events/{eventID}/participants/{participantID}/status
func SetParticipantStatusHandler(store inscription.Store, events event.Store, users UserResolver) http.HandlerFunc {
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
		if _, err := requireOwner(r, events, users, eventID); err != nil {
			fail(w, err)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		st := inscription.CanonicalParticipantStatus(req.Status)
		if err := store.SetParticipantStatus(r.Context(), eventID, pid, st); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "participant_id": pid, "status": st})
	}
}

// PUT /events/{eventID}/evaluators/{evaluatorID}/status
func SetEvaluatorStatusHandler(store inscription.Store, events event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		vid, err := urlID(r, "evaluatorID")
		if err != nil {
			http.Error(w, "evaluatorID required", http.StatusBadRequest)
			return
		}
		if _, err := requireOwner(r, events, users, eventID); err != nil {
			fail(w, err)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		st := inscription.CanonicalEvaluatorStatus(req.Status)
		if err := store.SetEvaluatorStatus(r.Context(), eventID, vid, st); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "evaluator_id": vid, "status": st})
	}
}
