package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecocampus-app/ecocampus-backend/api/routes"
	"github.com/ecocampus-app/ecocampus-backend/internal/activity"
	"github.com/ecocampus-app/ecocampus-backend/internal/auth"
	"github.com/ecocampus-app/ecocampus-backend/internal/challenges"
	"github.com/ecocampus-app/ecocampus-backend/internal/checkins"
	"github.com/ecocampus-app/ecocampus-backend/internal/events"
	"github.com/ecocampus-app/ecocampus-backend/internal/feedback"
	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/leaderboard"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/internal/plastic"
	"github.com/ecocampus-app/ecocampus-backend/internal/quizzes"
	"github.com/ecocampus-app/ecocampus-backend/internal/storefront"
	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/internal/users"
	"github.com/ecocampus-app/ecocampus-backend/pkg/airquality"
	"github.com/ecocampus-app/ecocampus-backend/pkg/assistant"
	"github.com/ecocampus-app/ecocampus-backend/pkg/auth/session"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/migrate"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/redis"
	"github.com/ecocampus-app/ecocampus-backend/pkg/storage/cloudinary"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	clock, err := campus.NewClock(cfg.Campus.TimeZone)
	if err != nil {
		logg.Error(context.Background(), "failed to load campus time zone", err)
		os.Exit(1)
	}

	cloudinaryClient, err := cloudinary.NewClient(cfg.Cloudinary)
	if err != nil {
		logg.Error(context.Background(), "failed to create cloudinary client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	userRepo := users.NewRepository(gormDB)
	streakRepo := streaks.NewRepository(gormDB)
	impactRepo := impact.NewRepository(gormDB)

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Outbox:         outboxService,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	checkinsService, err := checkins.NewService(checkins.ServiceParams{
		DB:            dbClient,
		Repo:          checkins.NewRepository(gormDB),
		StreakRepo:    streakRepo,
		Ledger:        ledgerService,
		Outbox:        outboxService,
		Clock:         clock,
		CheckInPoints: cfg.Campus.CheckInPoints,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkins service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Users:    userRepo,
		Streaks:  streakRepo,
		Impact:   impactRepo,
		Checkins: checkinsService,
		Uploader: cloudinaryClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	challengesService, err := challenges.NewService(challenges.ServiceParams{
		DB:       dbClient,
		Repo:     challenges.NewRepository(gormDB),
		Ledger:   ledgerService,
		Outbox:   outboxService,
		Uploader: cloudinaryClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create challenges service", err)
		os.Exit(1)
	}

	quizzesService, err := quizzes.NewService(quizzes.ServiceParams{
		DB:     dbClient,
		Repo:   quizzes.NewRepository(gormDB),
		Ledger: ledgerService,
		Outbox: outboxService,
		Clock:  clock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quizzes service", err)
		os.Exit(1)
	}

	eventsService, err := events.NewService(events.ServiceParams{
		DB:         dbClient,
		Repo:       events.NewRepository(gormDB),
		ImpactRepo: impactRepo,
		Ledger:     ledgerService,
		Outbox:     outboxService,
		Clock:      clock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	plasticService, err := plastic.NewService(plastic.ServiceParams{
		DB:         dbClient,
		ImpactRepo: impactRepo,
		Ledger:     ledgerService,
		Outbox:     outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create plastic service", err)
		os.Exit(1)
	}

	storefrontService, err := storefront.NewService(storefront.ServiceParams{
		DB:     dbClient,
		Repo:   storefront.NewRepository(gormDB),
		Ledger: ledgerService,
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create storefront service", err)
		os.Exit(1)
	}

	leaderboardService, err := leaderboard.NewService(leaderboard.ServiceParams{
		Repo:     leaderboard.NewRepository(gormDB),
		Cache:    redisClient,
		Logger:   logg,
		TopLimit: cfg.Leaderboard.TopLimit,
		CacheTTL: cfg.Leaderboard.CacheTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create leaderboard service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activity.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(feedback.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	var assistantClient *assistant.Client
	if cfg.Assistant.APIKey != "" {
		assistantClient, err = assistant.NewClient(cfg.Assistant)
		if err != nil {
			logg.Error(context.Background(), "failed to create assistant client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "assistant api key not set, chat endpoint disabled")
	}

	airQualityClient := airquality.NewClient(cfg.AirQuality)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Auth:        authService,
			Register:    registerService,
			Users:       usersService,
			Checkins:    checkinsService,
			Challenges:  challengesService,
			Quizzes:     quizzesService,
			Events:      eventsService,
			Plastic:     plasticService,
			Storefront:  storefrontService,
			Leaderboard: leaderboardService,
			Ledger:      ledgerService,
			Activity:    activityService,
			Feedback:    feedbackService,
			Assistant:   assistantClient,
			AirQuality:  airQualityClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
