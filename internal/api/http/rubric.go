package http

import (
	"encoding/json"
	"net/http"

	"github.com/event-soft/eventsoft-backend/internal/rubric"
)

// POST /events/{eventID}/criteria
func CreateCriterionHandler(svc *rubric.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		var req struct {
			Description string  `json:"description"`
			Weight      float64 `json:"weight"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		id, err := svc.Create(r.Context(), eventID, req.Description, req.Weight)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// GET /events/{eventID}/criteria
func ListCriteriaHandler(svc *rubric.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		list, err := svc.List(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		if list == nil {
			list = []rubric.Criterion{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /events/{eventID}/criteria/weight-sum
func WeightSumHandler(svc *rubric.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := urlID(r, "eventID")
		if err != nil {
			http.Error(w, "eventID required", http.StatusBadRequest)
			return
		}
		sum, err := svc.WeightSum(r.Context(), eventID)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "weight_sum": sum, "closed": sum == 100})
	}
}

// PUT /criteria/{criterionID}
func UpdateCriterionHandler(svc *rubric.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "criterionID")
		if err != nil {
			http.Error(w, "criterionID required", http.StatusBadRequest)
			return
		}
		var req struct {
			Description *string  `json:"description,omitempty"`
			Weight      *float64 `json:"weight,omitempty"`
			Force       bool     `json:"force,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		c, warnings, err := svc.Update(r.Context(), id, rubric.UpdateInput{
			Description: req.Description,
			Weight:      req.Weight,
			Force:       req.Force,
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"criterion": c, "warnings": warnings})
	}
}

// DELETE /criteria/{criterionID}
func DeleteCriterionHandler(svc *rubric.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "criterionID")
		if err != nil {
			http.Error(w, "criterionID required", http.StatusBadRequest)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
