// Package http holds the gateway's request handlers. Handlers are thin:
// decode, resolve the caller, delegate to a store or service, map
// domain errors onto status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/event-soft/eventsoft-backend/internal/auth/middleware"
	"github.com/event-soft/eventsoft-backend/internal/certs"
	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func urlID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	return strconv.ParseInt(raw, 10, 64)
}

// UserResolver maps the JWT subject (a username) to the users row.
type UserResolver interface {
	ByUsername(ctx context.Context, username string) (user.User, error)
}

func callerID(r *http.Request, users UserResolver) (int64, error) {
	sub := authmw.SubjectFromContext(r.Context())
	if sub == "" {
		return 0, errors.New("no subject")
	}
	u, err := users.ByUsername(r.Context(), sub)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// domainStatus picks the HTTP status for a domain error. Unknown errors
// map to 500.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, event.ErrNotFound),
		errors.Is(err, rubric.ErrNotFound),
		errors.Is(err, scoring.ErrNotFound),
		errors.Is(err, inscription.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, event.ErrInvalidDates),
		errors.Is(err, event.ErrInvalidTransition),
		errors.Is(err, rubric.ErrInvalidWeight),
		errors.Is(err, rubric.ErrEmptyDescription),
		errors.Is(err, scoring.ErrOutOfRange),
		errors.Is(err, scoring.ErrCrossEventMismatch),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, certs.ErrUnknownKind),
		errors.Is(err, certs.ErrPositionMismatch),
		errors.Is(err, certs.ErrNotInRanking):
		return http.StatusBadRequest
	case errors.Is(err, event.ErrEventNotMutable),
		errors.Is(err, rubric.ErrEventNotMutable),
		errors.Is(err, rubric.ErrCriterionInUse),
		errors.Is(err, scoring.ErrEvaluatorNotApproved),
		errors.Is(err, scoring.ErrParticipantNotAccepted),
		errors.Is(err, inscription.ErrAlreadyInscribed),
		errors.Is(err, inscription.ErrRoleConflict),
		errors.Is(err, user.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, event.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), domainStatus(err))
}
