package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mail-service/config"
	"mail-service/internal/cache"
	"mail-service/internal/cleanup"
	"mail-service/internal/consumer"
	"mail-service/internal/dispatcher"
	"mail-service/internal/producer"
	"mail-service/internal/repository"
	"mail-service/internal/router"
	"mail-service/internal/sender"
	"mail-service/internal/service"
	"mail-service/internal/template"
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

	repos := repository.New(db)

	// Redis опционален: без него нет кэша шаблонов и блокировки диспетчера.
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		var err error
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	engines, err := template.Build(cfg.Template.Engines)
	if err != nil {
		log.Fatal("failed to build template engines", zap.Error(err))
	}

	senders := sender.NewRegistry()
	senders.Register("smtp", sender.NewSMTPSender(cfg.SMTP))
	senders.Register("console", sender.NewConsoleSender(log))
	senders.Register("dummy", sender.NewDummySender())
	defaultSender, err := senders.Get(cfg.DefaultBackend)
	if err != nil {
		log.Fatal("unknown default mail backend", zap.String("alias", cfg.DefaultBackend))
	}
	senders.Register(sender.DefaultAlias, defaultSender)

	// Event bus опционален (nil отключает публикацию).
	var events service.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		p := producer.NewEmailEventsProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		defer p.Close()
		events = p
	}

	var templateCache service.TemplateCache
	if redisClient != nil {
		templateCache = redisClient
	}

	mailSvc := service.NewMailService(
		repos.Emails,
		repos.Templates,
		repos.Logs,
		repos.Attachments,
		senders,
		engines,
		cfg.Template.Preferred,
		templateCache,
		events,
		cfg.SMTP.From,
		cfg.Dispatcher.MaxRetries,
		cfg.Dispatcher.RetryInterval,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var locker dispatcher.Locker
	if redisClient != nil {
		locker = redisClient
	}
	disp := dispatcher.New(repos.Emails, mailSvc, locker, cfg.Dispatcher, log)
	go func() {
		if err := disp.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("dispatcher stopped", zap.Error(err))
		}
	}()

	var cons *consumer.KafkaEmailConsumer
	if len(cfg.Kafka.Brokers) > 0 {
		cons = consumer.NewKafkaEmailConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EmailTopic, mailSvc, log)
		go func() {
			if err := cons.Run(ctx); err != nil {
				log.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	cleanupSvc := cleanup.NewCleanupService(db, cfg.Cleanup.RetentionDays, cfg.Cleanup.LogRetentionDays, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, log)
	scheduler.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router.Router(mailSvc, repos, log),
	}
	go func() {
		log.Info("http server started", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if cons != nil {
		_ = cons.Close()
	}
	_ = senders.Close()
	time.Sleep(200 * time.Millisecond)
}
