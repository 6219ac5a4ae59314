package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecocampus-app/ecocampus-backend/api/controllers"
	"github.com/ecocampus-app/ecocampus-backend/api/middleware"
	"github.com/ecocampus-app/ecocampus-backend/internal/activity"
	"github.com/ecocampus-app/ecocampus-backend/internal/auth"
	"github.com/ecocampus-app/ecocampus-backend/internal/challenges"
	"github.com/ecocampus-app/ecocampus-backend/internal/checkins"
	"github.com/ecocampus-app/ecocampus-backend/internal/events"
	"github.com/ecocampus-app/ecocampus-backend/internal/feedback"
	"github.com/ecocampus-app/ecocampus-backend/internal/leaderboard"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/internal/plastic"
	"github.com/ecocampus-app/ecocampus-backend/internal/quizzes"
	"github.com/ecocampus-app/ecocampus-backend/internal/storefront"
	"github.com/ecocampus-app/ecocampus-backend/internal/users"
	"github.com/ecocampus-app/ecocampus-backend/pkg/airquality"
	"github.com/ecocampus-app/ecocampus-backend/pkg/assistant"
	"github.com/ecocampus-app/ecocampus-backend/pkg/auth/session"
	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs. Optional
// integrations (assistant, air quality) may be nil; their routes then
// answer with a dependency error.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	Sessions session.AccessSessionChecker

	Auth        auth.Service
	Register    auth.RegisterService
	Users       users.Service
	Checkins    checkins.Service
	Challenges  challenges.Service
	Quizzes     quizzes.Service
	Events      events.Service
	Plastic     plastic.Service
	Storefront  storefront.Service
	Leaderboard leaderboard.Service
	Ledger      ledger.Service
	Activity    activity.Service
	Feedback    feedback.Service

	Assistant  *assistant.Client
	AirQuality *airquality.Client
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	var assistantClient controllers.AssistantCompleter
	if p.Assistant != nil {
		assistantClient = p.Assistant
	}
	var airQualityClient controllers.AirQualityReader
	if p.AirQuality != nil {
		airQualityClient = p.AirQuality
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginStudentLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterStudentLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg), middleware.Idempotency(p.Redis, logg)).
			Post("/register", controllers.AuthRegister(p.Register, p.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.MeProfile(p.Users, logg))
			r.Put("/avatar", controllers.MeAvatar(p.Users, cfg.Cloudinary.MaxUploadMB, logg))
			r.Get("/qr", controllers.MeQR(p.Users, logg))
			r.Get("/activity", controllers.MeActivity(p.Activity, logg))
			r.Get("/points", controllers.MePoints(p.Ledger, logg))
		})

		r.Route("/checkins", func(r chi.Router) {
			r.Post("/", controllers.CheckIn(p.Checkins, logg))
			r.Get("/status", controllers.CheckInStatus(p.Checkins, logg))
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", controllers.ChallengeList(p.Challenges, logg))
			r.Post("/{challengeId}/submissions", controllers.ChallengeSubmit(p.Challenges, cfg.Cloudinary.MaxUploadMB, logg))
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/today", controllers.QuizToday(p.Quizzes, logg))
			r.Post("/today/submissions", controllers.QuizSubmit(p.Quizzes, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(p.Events, logg))
			r.Post("/{eventId}/rsvp", controllers.EventRSVP(p.Events, logg))
			r.Delete("/{eventId}/rsvp", controllers.EventCancelRSVP(p.Events, logg))
		})

		r.Route("/plastic", func(r chi.Router) {
			r.Get("/catalog", controllers.PlasticCatalog(p.Plastic))
			r.Post("/logs", controllers.PlasticLog(p.Plastic, logg))
			r.Get("/logs", controllers.PlasticHistory(p.Plastic, logg))
		})

		r.Route("/store", func(r chi.Router) {
			r.Get("/products", controllers.StoreProducts(p.Storefront, logg))
			r.Post("/redemptions", controllers.StoreRedeem(p.Storefront, logg))
			r.Get("/orders", controllers.StoreOrders(p.Storefront, logg))
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/students", controllers.LeaderboardStudents(p.Leaderboard, logg))
			r.Get("/departments", controllers.LeaderboardDepartments(p.Leaderboard, logg))
		})

		r.Post("/feedback", controllers.FeedbackSubmit(p.Feedback, logg))
		r.Post("/assistant/chat", controllers.AssistantChat(assistantClient, logg))
		r.Get("/air-quality", controllers.AirQuality(airQualityClient, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Post("/events/{eventId}/attendance", controllers.AdminMarkAttendance(p.Events, logg))
		r.Post("/challenges/submissions/{submissionId}/review", controllers.AdminReviewSubmission(p.Challenges, logg))
	})

	return r
}
