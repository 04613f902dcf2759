package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nearby-activity-backend/internal/config"
	"nearby-activity-backend/internal/geo"
	"nearby-activity-backend/internal/handlers"
	"nearby-activity-backend/internal/push"
	"nearby-activity-backend/internal/repository"
	"nearby-activity-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to the document store
	db, err := repository.ConnectMongo(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to mongo")
	}
	defer db.Client().Disconnect(context.Background())
	log.Info().Msg("Document store connection established")

	// Connect to the notification archive
	pg, err := pgxpool.New(context.Background(), cfg.Postgres.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pg.Close()
	if err := pg.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping postgres")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	archive := repository.NewNotificationArchive(pg)
	if err := archive.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure archive schema")
	}

	// Push gateways: Expo for Expo tokens, APNs for raw device tokens.
	pushTimeout := time.Duration(cfg.Push.TimeoutSeconds) * time.Second
	gateway := buildGateway(cfg.Push, pushTimeout)

	// Initialize services
	policy := services.NewVisibilityPolicy(cfg.Engine)
	scorer := services.NewMatchScorer()
	dispatcher := services.NewNotificationDispatcher(gateway, userRepo, archive, cfg.Engine.FanoutWorkers, pushTimeout)
	userService := services.NewUserService(userRepo, archive, geo.NoopProvider{})
	connectionService := services.NewConnectionService(connRepo, userRepo)
	activityService := services.NewActivityService(activityRepo, userRepo, connRepo, scorer, dispatcher)
	feed := services.NewFeedAggregator(policy, userRepo, connRepo, activityRepo, cfg.Engine)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	activityHandler := handlers.NewActivityHandler(activityService)
	wsHandler := handlers.NewWebSocketHandler(feed, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", userHandler.CreateUser)
		r.Put("/users/{id}/location", userHandler.UpdateLocation)
		r.Put("/users/{id}/schedule", userHandler.UpdateSchedule)
		r.Put("/users/{id}/push-token", userHandler.UpdatePushToken)
		r.Put("/users/{id}/notification-settings", userHandler.UpdateNotificationSettings)
		r.Post("/users/{id}/block/{target}", userHandler.Block)
		r.Delete("/users/{id}/block/{target}", userHandler.Unblock)
		r.Get("/users/{id}/notifications", userHandler.Notifications)
		r.Post("/users/{id}/notifications/{nid}/read", userHandler.MarkNotificationRead)
		r.Get("/users/{id}/connections", connectionHandler.ListConnections)

		r.Post("/connections", connectionHandler.CreateConnection)
		r.Post("/connections/{id}/accept", connectionHandler.AcceptConnection)

		r.Post("/activities", activityHandler.CreateActivity)
		r.Get("/activities/{kind}/{id}", activityHandler.GetActivity)
		r.Patch("/activities/{kind}/{id}", activityHandler.EditActivity)
		r.Post("/activities/{kind}/{id}/join", activityHandler.Join)
		r.Post("/activities/{kind}/{id}/leave", activityHandler.Leave)
		r.Delete("/activities/{kind}/{id}/participants/{target}", activityHandler.RemoveParticipant)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildGateway wires the push routing. APNs is optional: without a key
// file only Expo tokens can be reached and APNs sends fail fast.
func buildGateway(cfg config.PushConfig, timeout time.Duration) push.Gateway {
	expo := push.NewExpoGateway(cfg.ExpoURL, timeout)
	if cfg.APNsKeyFile == "" {
		log.Warn().Msg("APNs key not configured; only Expo push tokens will be delivered")
		return expo
	}
	apns, err := push.NewAPNsGateway(cfg.APNsKeyFile, cfg.APNsKeyID, cfg.APNsTeamID, cfg.APNsTopic, cfg.APNsProduction)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create APNs gateway")
	}
	return &push.Router{Expo: expo, APNs: apns}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
