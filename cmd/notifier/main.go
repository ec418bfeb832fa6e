package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfg "github.com/merehead/crypto-tx-notifier/config"
	"github.com/merehead/crypto-tx-notifier/internal/handlers"
	notifierslack "github.com/merehead/crypto-tx-notifier/internal/slack"
	"github.com/merehead/crypto-tx-notifier/internal/usecases"
	repository "github.com/merehead/crypto-tx-notifier/internal/usecases/repository"
	"github.com/merehead/crypto-tx-notifier/internal/workers"
	"github.com/merehead/crypto-tx-notifier/pkg/database"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Ops server timeout constants.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 15
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

func main() {
	time.Local = time.UTC

	// .env is optional; deployments provide real environment variables.
	_ = godotenv.Load()

	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	opts := &slog.HandlerOptions{
		Level: config.Log.Level,
	}
	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	logger.Info("Starting transaction notifier",
		"environment", config.App.Environment,
		"debug", config.App.Debug,
		"poll_interval", config.Monitor.PollInterval.String(),
		"ops_port", config.Ops.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core processing database
	pg, err := database.New(ctx, config.DB.DatabaseURL(config.DB.Name),
		database.MaxPoolSize(config.DB.PoolMax))
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Auth database holding merchant_data
	merchantPG, err := database.New(ctx, config.DB.DatabaseURL(config.DB.MerchantName),
		database.MaxPoolSize(config.DB.PoolMax))
	if err != nil {
		logger.Error("merchant database connection failed", "error", err)
		os.Exit(1)
	}
	defer merchantPG.Close()

	migrationsPath := "./migrations"
	if workDir, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(workDir, "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "migrations")
		} else if _, err := os.Stat(filepath.Join(workDir, "..", "migrations")); !os.IsNotExist(err) {
			migrationsPath = filepath.Join(workDir, "..", "migrations")
		}
	}

	logger.Info("Running database migrations", "path", migrationsPath)
	if err = database.RunMigrations(logger, config.DB.DatabaseURL(config.DB.Name), migrationsPath); err != nil {
		logger.Error("Failed to run database migrations", "error", err)
		log.Fatal(err)
	}

	store := repository.NewTransactionsRepository(logger, pg, merchantPG)

	directory, err := usecases.NewDirectory(ctx, logger, store)
	if err != nil {
		logger.Error("Failed to load merchant directory", "error", err)
		log.Fatal(err)
	}

	notifier := notifierslack.NewClient(logger, config.Slack.BotToken)

	runMonitors(ctx, logger, config, store, notifier, directory)

	opsHandler := handlers.NewOpsHandler(logger)
	router := mux.NewRouter()
	opsHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + config.Ops.Port,
		Handler:      router,
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	go func() {
		logger.Info("Starting ops server", "address", server.Addr)
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops server error", "error", err)
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops server forced to shutdown", "error", err)
		return
	}

	logger.Info("Notifier exited properly")
}

func runMonitors(
	ctx context.Context,
	logger *slog.Logger,
	config *cfg.Config,
	store *repository.TransactionsRepository,
	notifier *notifierslack.Client,
	directory *usecases.Directory,
) {
	withdrawals := workers.NewWithdrawalMonitor(logger, store, notifier, directory,
		config.Slack.ChannelID, config.Monitor.PollInterval)
	deposits := workers.NewDepositMonitor(logger, store, notifier, directory,
		config.Slack.RiskChannelID, config.Monitor.PollInterval)
	exchanges := workers.NewExchangeMonitor(logger, store, notifier, directory,
		config.Slack.ChannelID, config.Monitor.PollInterval)

	go func() {
		if err := withdrawals.Start(ctx); err != nil {
			logger.Error("Withdrawal monitor failed", "error", err)
			log.Fatal(err)
		}
	}()

	go func() {
		if err := deposits.Start(ctx); err != nil {
			logger.Error("Deposit monitor failed", "error", err)
			log.Fatal(err)
		}
	}()

	go func() {
		if err := exchanges.Start(ctx); err != nil {
			logger.Error("Exchange monitor failed", "error", err)
			log.Fatal(err)
		}
	}()

	logger.Info("All monitors started")
}
