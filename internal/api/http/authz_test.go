package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/event-soft/eventsoft-backend/internal/auth/middleware"
	"github.com/event-soft/eventsoft-backend/internal/certs"
	"github.com/event-soft/eventsoft-backend/internal/evalengine"
	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/rbac"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

type fakeUsers struct{ byName map[string]user.User }

func (f fakeUsers) ByUsername(_ context.Context, username string) (user.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// authzBackend backs real view and eligibility instances with one
// finalized event and two accepted participants.
type authzBackend struct{}

func (authzBackend) Get(_ context.Context, id int64) (event.Event, error) {
	if id != 1 {
		return event.Event{}, event.ErrNotFound
	}
	return event.Event{ID: 1, Name: "Feria", State: event.StateFinalized,
		Policy: event.Policy{NMin: 5, DiscrepancyThreshold: 3.0}}, nil
}

func (authzBackend) ListByEvent(_ context.Context, _ int64) ([]rubric.Criterion, error) {
	return []rubric.Criterion{{ID: 1, EventID: 1, Description: "Originalidad", Weight: 100}}, nil
}

func (authzBackend) ForEvent(_ context.Context, _ int64) ([]scoring.Score, error) {
	return nil, nil
}

func (authzBackend) ForParticipant(_ context.Context, _, _ int64) ([]scoring.Score, error) {
	return nil, nil
}

func (authzBackend) Participant(_ context.Context, eventID, pid int64) (inscription.ParticipantEvent, error) {
	if eventID != 1 || (pid != 10 && pid != 11) {
		return inscription.ParticipantEvent{}, inscription.ErrNotFound
	}
	return inscription.ParticipantEvent{EventID: eventID, ParticipantID: pid,
		Status: inscription.ParticipantAccepted}, nil
}

func (authzBackend) ParticipantsForEvent(_ context.Context, _ int64) ([]inscription.ParticipantEvent, error) {
	return nil, nil
}

func (authzBackend) Evaluator(_ context.Context, _, _ int64) (inscription.EvaluatorEvent, error) {
	return inscription.EvaluatorEvent{}, inscription.ErrNotFound
}

func (authzBackend) DistinctParticipantsScored(_ context.Context, _, _ int64) (int, error) {
	return 0, nil
}

func (authzBackend) Directory(_ context.Context, ids []int64) (map[int64]user.Profile, error) {
	out := map[int64]user.Profile{}
	for _, id := range ids {
		out[id] = user.Profile{FullName: "Someone"}
	}
	return out, nil
}

func authzRequest(t *testing.T, target, subject, role string, params map[string]string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = authmw.WithSubject(ctx, subject)
	ctx = rbac.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func TestDetailHandlerOwnOnly(t *testing.T) {
	b := authzBackend{}
	views := evalengine.NewViews(b, b, b, b, b)
	users := fakeUsers{byName: map[string]user.User{
		"pat": {ID: 10, Username: "pat", Role: user.RoleParticipant},
	}}
	h := DetailHandler(views, users)

	// A participant may not read another participant's breakdown.
	w := httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/participants/11/detail", "pat", user.RoleParticipant,
		map[string]string{"eventID": "1", "participantID": "11"}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign detail: status = %d, want 403", w.Code)
	}

	// Their own row stays readable.
	w = httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/participants/10/detail", "pat", user.RoleParticipant,
		map[string]string{"eventID": "1", "participantID": "10"}))
	if w.Code != http.StatusOK {
		t.Fatalf("own detail: status = %d, want 200", w.Code)
	}

	// Evaluators hold the full permission and see everyone.
	w = httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/participants/11/detail", "pat", user.RoleEvaluator,
		map[string]string{"eventID": "1", "participantID": "11"}))
	if w.Code != http.StatusOK {
		t.Fatalf("evaluator detail: status = %d, want 200", w.Code)
	}
}

func TestEligibilityHandlerOwnOnly(t *testing.T) {
	b := authzBackend{}
	elig := certs.NewEligibility(b, b, b)
	users := fakeUsers{byName: map[string]user.User{
		"pat": {ID: 10, Username: "pat", Role: user.RoleParticipant},
		"adm": {ID: 1, Username: "adm", Role: user.RoleAdmin},
	}}
	h := EligibilityHandler(elig, users)

	// A participant naming another subject is refused.
	w := httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/certificates/eligibility?kind=P&subject_id=11", "pat",
		user.RoleParticipant, map[string]string{"eventID": "1"}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign subject: status = %d, want 403", w.Code)
	}

	// Naming themselves is the same as omitting subject_id.
	w = httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/certificates/eligibility?kind=P&subject_id=10", "pat",
		user.RoleParticipant, map[string]string{"eventID": "1"}))
	if w.Code != http.StatusOK {
		t.Fatalf("own subject: status = %d, want 200", w.Code)
	}

	// Admins check anyone.
	w = httptest.NewRecorder()
	h(w, authzRequest(t, "/events/1/certificates/eligibility?kind=P&subject_id=11", "adm",
		user.RoleAdmin, map[string]string{"eventID": "1"}))
	if w.Code != http.StatusOK {
		t.Fatalf("admin subject: status = %d, want 200", w.Code)
	}
}
