package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/rbac"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

type eventReq struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	City        string        `json:"city"`
	Venue       string        `json:"venue"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Capacity    int           `json:"capacity"`
	Policy      *event.Policy `json:"policy,omitempty"`
}

// POST /events
func CreateEventHandler(store event.Store, users UserResolver, defaults event.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		owner, err := callerID(r, users)
		if err != nil {
			http.Error(w, "unknown caller", http.StatusUnauthorized)
			return
		}
		pol := defaults
		if req.Policy != nil {
			pol = *req.Policy
		}
		ev := event.Event{
			Name:        req.Name,
			Description: req.Description,
			City:        req.City,
			Venue:       req.Venue,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			State:       event.StateDraft,
			OwnerID:     owner,
			Capacity:    req.Capacity,
			Policy:      pol,
		}
		id, err := store.Create(r.Context(), ev)
		if err != nil {
			fail(w, err)
			return
		}
		ev.ID = id
		writeJSON(w, http.StatusCreated, ev)
	}
}

// GET /events
func ListEventsHandler(store event.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := store.List(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		if evs == nil {
			evs = []event.Event{}
		}
		writeJSON(w, http.StatusOK, evs)
	}
}

// GET /events/{eventID}
func GetEventHandler(store event.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		ev, err := store.Get(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

// requireOwner loads the event and rejects callers who are neither its
// owner nor an admin.
func requireOwner(r *http.Request, store event.Store, users UserResolver, eventID int64) (event.Event, error) {
	ev, err := store.Get(r.Context(), eventID)
	if err != nil {
		return event.Event{}, err
	}
	if rbac.RoleFromContext(r.Context()) == user.RoleAdmin {
		return ev, nil
	}
	caller, err := callerID(r, users)
	if err != nil || caller != ev.OwnerID {
		return event.Event{}, event.ErrNotOwner
	}
	return ev, nil
}

// PUT /events/{eventID}
func UpdateEventHandler(store event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		ev, err := requireOwner(r, store, users, id)
		if err != nil {
			fail(w, err)
			return
		}
		var req eventReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		ev.Name = req.Name
		ev.Description = req.Description
		ev.City = req.City
		ev.Venue = req.Venue
		ev.StartDate = req.StartDate
		ev.EndDate = req.EndDate
		ev.Capacity = req.Capacity
		if err := store.Update(r.Context(), ev); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

// POST /events/{eventID}/state
func SetEventStateHandler(store event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		if _, err := requireOwner(r, store, users, id); err != nil {
			fail(w, err)
			return
		}
		var req struct {
			State event.State `json:"state"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !event.ValidState(req.State) {
			http.Error(w, "valid state required", http.StatusBadRequest)
			return
		}
		if err := store.SetState(r.Context(), id, req.State); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "state": req.State})
	}
}

// PUT /events/{eventID}/policy
func SetEventPolicyHandler(store event.Store, users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		if _, err := requireOwner(r, store, users, id); err != nil {
			fail(w, err)
			return
		}
		var pol event.Policy
		if err := json.NewDecoder(r.Body).Decode(&pol); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if pol.NMin < 0 || pol.DiscrepancyThreshold < 0 {
			http.Error(w, "policy values must be non-negative", http.StatusBadRequest)
			return
		}
		if err := store.SetPolicy(r.Context(), id, pol); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "policy": pol})
	}
}
