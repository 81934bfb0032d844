package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/event-soft/eventsoft-backend/internal/api/http"
	"github.com/event-soft/eventsoft-backend/internal/audit"
	auth "github.com/event-soft/eventsoft-backend/internal/auth/middleware"
	"github.com/event-soft/eventsoft-backend/internal/certs"
	"github.com/event-soft/eventsoft-backend/internal/config"
	"github.com/event-soft/eventsoft-backend/internal/db"
	"github.com/event-soft/eventsoft-backend/internal/evalengine"
	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/notify"
	"github.com/event-soft/eventsoft-backend/internal/rbac"
	"github.com/event-soft/eventsoft-backend/internal/rubric"
	"github.com/event-soft/eventsoft-backend/internal/scoring"
	"github.com/event-soft/eventsoft-backend/internal/storage"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// Stores
	eventStore := event.NewSQLStore(dbh)
	inscStore := inscription.NewSQLStore(dbh)
	criterionStore := rubric.NewSQLStore(dbh)
	scoreStore := scoring.NewSQLStore(dbh)
	userStore := user.NewSQLStore(dbh)
	auditLog := audit.NewLog(dbh)

	// Services
	rubricSvc := rubric.NewService(criterionStore, eventStore, scoreStore)
	scoringSvc := scoring.NewService(scoreStore, criterionStore, inscStore, auditLog)
	views := evalengine.NewViews(eventStore, criterionStore, scoreStore, inscStore, userStore)
	eligibility := certs.NewEligibility(eventStore, inscStore, scoreStore)
	manifests := certs.NewManifests(eventStore, eligibility, inscStore, views, userStore)

	archive, err := storage.NewArchive(cfg.ArtifactBasePath)
	if err != nil {
		log.Fatalf("artifact archive: %v", err)
	}
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPEnabled {
		mailer = &notify.SMTPMailer{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			From: cfg.SMTPFrom, User: cfg.SMTPUser, Pass: cfg.SMTPPass,
		}
	}
	certSvc := certs.NewService(eventStore, manifests, notify.TextRenderer{}, mailer, archive, auditLog)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	defaultPolicy := event.Policy{
		NMin:                 cfg.DefaultNMin,
		DiscrepancyThreshold: cfg.DefaultDiscrepancyThreshold,
		IncludeScoreOnCert:   cfg.DefaultIncludeScoreOnCert,
	}

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Events
		pr.With(rbac.Require("event:create")).
			Post("/events", api.CreateEventHandler(eventStore, userStore, defaultPolicy))
		pr.With(rbac.Require("event:view")).
			Get("/events", api.ListEventsHandler(eventStore))
		pr.With(rbac.Require("event:view")).
			Get("/events/{eventID}", api.GetEventHandler(eventStore))
		pr.With(rbac.Require("event:manage")).
			Put("/events/{eventID}", api.UpdateEventHandler(eventStore, userStore))
		pr.With(rbac.Require("event:manage")).
			Post("/events/{eventID}/state", api.SetEventStateHandler(eventStore, userStore))
		pr.With(rbac.Require("event:manage")).
			Put("/events/{eventID}/policy", api.SetEventPolicyHandler(eventStore, userStore))

		// Rubric
		pr.With(rbac.Require("criteria:manage")).
			Post("/events/{eventID}/criteria", api.CreateCriterionHandler(rubricSvc))
		pr.With(rbac.Require("criteria:view")).
			Get("/events/{eventID}/criteria", api.ListCriteriaHandler(rubricSvc))
		pr.With(rbac.Require("criteria:view")).
			Get("/events/{eventID}/criteria/weight-sum", api.WeightSumHandler(rubricSvc))
		pr.With(rbac.Require("criteria:manage")).
			Put("/criteria/{criterionID}", api.UpdateCriterionHandler(rubricSvc))
		pr.With(rbac.Require("criteria:manage")).
			Delete("/criteria/{criterionID}", api.DeleteCriterionHandler(rubricSvc))

		// Inscriptions
		pr.With(rbac.Require("inscription:self")).
			Post("/events/{eventID}/participants", api.RegisterParticipantHandler(inscStore, eventStore, userStore))
		pr.With(rbac.Require("inscription:self")).
			Post("/events/{eventID}/evaluators", api.RegisterEvaluatorHandler(inscStore, eventStore, userStore))
		pr.With(rbac.Require("inscription:self")).
			Post("/events/{eventID}/attendees", api.RegisterAttendeeHandler(inscStore, eventStore, userStore))
		pr.With(rbac.Require("event:view")).
			Get("/events/{eventID}/participants", api.ListParticipantsHandler(inscStore))
		pr.With(rbac.Require("event:manage")).
			Get("/events/{eventID}/evaluators", api.ListEvaluatorsHandler(inscStore))
		pr.With(rbac.Require("inscription:decide")).
			Put("/events/{eventID}/participants/{participantID}/status", api.SetParticipantStatusHandler(inscStore, eventStore, userStore))
		pr.With(rbac.Require("inscription:decide")).
			Put("/events/{eventID}/evaluators/{evaluatorID}/status", api.SetEvaluatorStatusHandler(inscStore, eventStore, userStore))

		// Scoring
		pr.With(rbac.Require("score:put")).
			Put("/scores", api.PutScoreHandler(scoringSvc, userStore))
		pr.With(rbac.Require("score:delete")).
			Delete("/scores", api.DeleteScoreHandler(scoringSvc, userStore))
		pr.With(rbac.Require("score:view")).
			Get("/events/{eventID}/scores/mine", api.MyScoresHandler(scoringSvc, userStore))

		// Views
		pr.With(rbac.Require("podium:view")).
			Get("/events/{eventID}/podium", api.PodiumHandler(views))
		pr.With(rbac.RequireAny("detail:view", "detail:view-own")).
			Get("/events/{eventID}/participants/{participantID}/detail", api.DetailHandler(views, userStore))

		// Certificates
		pr.With(rbac.RequireAny("certs:manage", "certs:eligibility-own")).
			Get("/events/{eventID}/certificates/eligibility", api.EligibilityHandler(eligibility, userStore))
		pr.With(rbac.Require("certs:manage")).
			Get("/events/{eventID}/certificates/manifest", api.ManifestHandler(manifests))
		pr.With(rbac.Require("certs:manage")).
			Post("/events/{eventID}/certificates/emit", api.EmitCertificatesHandler(certSvc))

		// Users and administration
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/admin/users", api.BulkUpsertUsersHandler(userStore))
		pr.With(rbac.Require("users:list")).
			Get("/admin/users", api.ListUsersHandler(userStore))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
		pr.With(rbac.Require("audit:view")).
			Get("/admin/audit", api.AuditLogHandler(auditLog))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("eventsoft gateway listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
