package main

import (
	"context"
	"fmt"
	"os"

	"mail-service/config"
	"mail-service/internal/cleanup"
	"mail-service/pkg/database"
	"mail-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(db, cfg.Cleanup.RetentionDays, cfg.Cleanup.LogRetentionDays, log)

	ctx := context.Background()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "emails":
			log.Info("running sent emails cleanup")
			if err := cleanupSvc.CleanupSentEmails(ctx); err != nil {
				log.Fatal("failed to cleanup sent emails", zap.Error(err))
			}
		case "expired":
			log.Info("running expired emails cleanup")
			if err := cleanupSvc.CleanupExpiredEmails(ctx); err != nil {
				log.Fatal("failed to cleanup expired emails", zap.Error(err))
			}
		case "logs":
			log.Info("running delivery logs cleanup")
			if err := cleanupSvc.CleanupLogs(ctx); err != nil {
				log.Fatal("failed to cleanup delivery logs", zap.Error(err))
			}
		case "all":
			fallthrough
		default:
			log.Info("running full cleanup")
			if err := cleanupSvc.RunFullCleanup(ctx); err != nil {
				log.Fatal("failed to run full cleanup", zap.Error(err))
			}
		}
	} else {
		fmt.Println("Usage: go run cmd/cleanup/main.go [emails|expired|logs|all]")
		fmt.Println("  emails  - cleanup sent emails older than retention period")
		fmt.Println("  expired - cleanup emails that expired before delivery")
		fmt.Println("  logs    - cleanup delivery logs")
		fmt.Println("  all     - run full cleanup (default)")
		os.Exit(1)
	}

	log.Info("cleanup completed successfully")
}
