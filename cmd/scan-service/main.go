package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/delivery/consumer"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/common"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/postgres"
	"golang-deal-scout/pkg/redis"
	"golang-deal-scout/pkg/telegram"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the discovery scan service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Scan Service", logger.Field("name", cfg.App.Name))

	db, err := postgres.NewDB(cfg.Database.Postgres())
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisClient, err := redis.NewClient(cfg.Redis.Client())
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.EnsureGroup(ctx, common.RedisStreamThesisScan, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	if cfg.Gemini.APIKey == "" {
		appLogger.Fatal("Gemini API key is required by the scan service")
	}
	genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	agentRepo := repository.NewGeminiAgentRepository(cfg, appLogger, genAiClient)
	discoverySvc := service.NewDiscoveryService(
		cfg,
		agentRepo,
		repository.NewCompanyRepository(db.DB),
		repository.NewDiscoveryRepository(db.DB),
		repository.NewThesisRepository(db.DB),
		repository.NewAuditRepository(db.DB),
		repository.NewScanRunRepository(db.DB),
		telegramNotifier,
		appLogger,
	)

	scanConsumer := consumer.NewScanConsumer(cfg, redisClient.Client, discoverySvc, appLogger)
	if err := scanConsumer.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start scan consumer", logger.ErrorField(err))
	}

	appLogger.Info("Scan service started. Waiting for scan requests...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down scan service...")
	cancel()
	scanConsumer.Stop()
	appLogger.Info("Scan service exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "scan-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scan-service CLI: %s\n", err)
		os.Exit(1)
	}
}
