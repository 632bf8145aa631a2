package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/blacksmith/internal/adapters/customerprovider"
	"github.com/Amund211/blacksmith/internal/adapters/database"
	"github.com/Amund211/blacksmith/internal/adapters/feedback"
	"github.com/Amund211/blacksmith/internal/adapters/ledger"
	"github.com/Amund211/blacksmith/internal/adapters/sessionstore"
	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/config"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/Amund211/blacksmith/internal/ports"
	"github.com/Amund211/blacksmith/internal/reporting"
	"github.com/Amund211/blacksmith/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "blacksmith"

const traceSampleRatio = 1.0 / 20.0

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil))).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	if !config.IsDevelopment() {
		shutdownTelemetry, err := telemetry.SetupOTelSDK(ctx, serviceName, traceSampleRatio)
		if err != nil {
			fail("Failed to set up telemetry", "error", err.Error())
		}
		defer func() {
			err := shutdownTelemetry(context.Background())
			if err != nil {
				logger.Error("Failed to shut down telemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized telemetry")
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	logger.Info("Initializing database connection")
	db, dialect, err := database.NewLedgerDatabase(config, logger.With("component", "database"))
	if err != nil {
		fail("Failed to initialize ledger database", "error", err.Error())
	}
	defer db.Close()
	logger.Info("Initialized database connection", "dialect", string(dialect))

	ledgerSchemaName := database.GetSchemaName(!config.IsProduction())

	err = database.NewDatabaseMigrator(db, dialect, logger.With("component", "migrator")).Migrate(ctx, ledgerSchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	ledgerRepo := ledger.NewRepository(db, dialect, ledgerSchemaName)
	logger.Info("Initialized ledger repository")

	staticCustomers := customerprovider.NewStatic(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	var requestCustomer app.RequestCustomer
	if config.CustomerAPIURL() != "" {
		httpClient := &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		remoteCustomers, err := customerprovider.NewRemote(
			httpClient,
			config.CustomerAPIURL(),
			config.CustomerAPIKey(),
			time.Now,
			time.After,
		)
		if err != nil {
			fail("Failed to initialize remote customer provider", "error", err.Error())
		}
		requestCustomer = app.BuildRequestCustomer(staticCustomers, remoteCustomers, app.CustomerTimeout, time.After)
		logger.Info("Initialized remote customer provider")
	} else {
		requestCustomer = app.BuildRequestCustomer(staticCustomers, nil, app.CustomerTimeout, time.After)
	}

	feedbackMetrics, err := feedback.NewMetricsSink()
	if err != nil {
		fail("Failed to initialize feedback metrics", "error", err.Error())
	}
	feedbackSink := feedback.NewFanout(feedback.NewLogSink(slog.LevelDebug), feedbackMetrics)

	ledgerHooks := app.BuildLedgerHooks(ledgerRepo)

	newGame := func(sessionID string, gameFeedback app.FeedbackSink) *app.Game {
		return app.NewGame(sessionID, app.GameDeps{
			Rand:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
			Feedback:        gameFeedback,
			RequestCustomer: requestCustomer,
			NewID:           uuid.NewString,
			NowFunc:         time.Now,
			Hooks:           ledgerHooks,
		})
	}

	sessions, stopSessions := sessionstore.NewTTLStore[*app.Session](config.SessionIdleTTL())
	defer stopSessions()

	createGame := app.BuildCreateGame(sessions, newGame, feedbackSink, uuid.NewString, time.Now)
	getGame := app.BuildGetGame(sessions, time.Now)
	applyAction := app.BuildApplyAction(sessions, time.Now)
	getSessionHistory := app.BuildGetSessionHistory(ledgerRepo)

	allowedOrigins, err := ports.NewDomainSuffixes(config.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	mux := http.NewServeMux()

	mux.HandleFunc(
		"OPTIONS /v1/games",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"POST /v1/games",
		ports.MakeCreateGameHandler(
			createGame,
			allowedOrigins,
			logger.With("port", "creategame"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/games/{sessionID}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/games/{sessionID}",
		ports.MakeGetGameHandler(
			getGame,
			allowedOrigins,
			logger.With("port", "getgame"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/games/{sessionID}/actions",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"POST /v1/games/{sessionID}/actions",
		ports.MakeApplyActionHandler(
			applyAction,
			allowedOrigins,
			logger.With("port", "applyaction"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/games/{sessionID}/history",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/games/{sessionID}/history",
		ports.MakeGetHistoryHandler(
			getSessionHistory,
			allowedOrigins,
			logger.With("port", "history"),
			sentryMiddleware,
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port()),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}()

	logger.Info("Init complete", "port", config.Port())
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdownDone
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
