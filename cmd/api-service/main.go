package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-deal-scout/internal/pipeline/config"
	delivery "golang-deal-scout/internal/pipeline/delivery/http"
	_ "golang-deal-scout/internal/pipeline/docs"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/postgres"
	"golang-deal-scout/pkg/redis"
	"golang-deal-scout/pkg/telegram"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the deal pipeline API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.Field("name", cfg.App.Name), logger.Field("version", cfg.App.Version))

	db, err := postgres.NewDB(cfg.Database.Postgres())
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Redis only backs asynchronous scans; without it the API still serves synchronous scans.
	var streamClient *goredis.Client
	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewClient(cfg.Redis.Client())
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		streamClient = redisClient.Client
	} else {
		appLogger.Warn("Redis not configured, asynchronous scans are disabled")
	}

	var genAiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		genAiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	storage, err := repository.NewS3ObjectStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", logger.ErrorField(err))
	}

	// Initialize repositories
	agentRepo := repository.NewGeminiAgentRepository(cfg, appLogger, genAiClient)
	companyRepo := repository.NewCompanyRepository(db.DB)
	discoveryRepo := repository.NewDiscoveryRepository(db.DB)
	thesisRepo := repository.NewThesisRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	noteRepo := repository.NewNoteRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)
	scanRunRepo := repository.NewScanRunRepository(db.DB)
	websiteRepo := repository.NewWebsiteRepository(cfg, appLogger)
	newsRepo := repository.NewNewsRepository(cfg, appLogger)
	scanQueue := repository.NewScanQueueRepository(streamClient, cfg.Redis.StreamMaxLen)

	// Initialize services
	discoverySvc := service.NewDiscoveryService(cfg, agentRepo, companyRepo, discoveryRepo, thesisRepo, auditRepo, scanRunRepo, telegramNotifier, appLogger)
	services := delivery.Services{
		Company:    service.NewCompanyService(companyRepo, noteRepo, auditRepo, appLogger),
		Thesis:     service.NewThesisService(cfg, thesisRepo, scanQueue, discoverySvc, appLogger),
		Discovery:  discoverySvc,
		ScanRuns:   service.NewScanRunService(scanRunRepo, thesisRepo, appLogger),
		Enrichment: service.NewEnrichmentService(cfg, agentRepo, websiteRepo, companyRepo, auditRepo, appLogger),
		Screening:  service.NewScreeningService(cfg, agentRepo, newsRepo, companyRepo, appLogger),
		Document:   service.NewDocumentService(cfg, storage, documentRepo, companyRepo, auditRepo, appLogger),
		Chat:       service.NewChatService(agentRepo, companyRepo, appLogger),
	}

	e := delivery.NewRouter(services, delivery.RouterOptions{
		JWTSecret:   cfg.Auth.JWTSecret,
		MaxUploadMB: cfg.Storage.MaxUploadMB,
	}, appLogger)
	if cfg.Auth.JWTSecret == "" {
		appLogger.Warn("JWT secret not configured, requests run as the anonymous user")
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Deal Scout API
// @version 1.0
// @description Deal pipeline tracker: companies, investment theses, agent discovery, enrichment and screening.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
