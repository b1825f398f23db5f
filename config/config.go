package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mail-service/pkg/database"
)

type Config struct {
	HTTPPort string

	DB         DB
	SMTP       SMTP
	Kafka      Kafka
	Redis      Redis
	Dispatcher Dispatcher
	Template   Template
	Cleanup    Cleanup

	// Алиас бэкенда отправки по умолчанию: smtp | console | dummy
	DefaultBackend string
}

type DB struct {
	database.Config
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

type Kafka struct {
	Brokers     []string
	GroupID     string
	EmailTopic  string
	EventsTopic string
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Dispatcher struct {
	PollInterval  time.Duration
	Concurrency   int
	BatchSize     int
	MaxRetries    int
	RetryInterval time.Duration
	// TTL аренды блокировки диспетчера в redis.
	LockTTL time.Duration
}

// Template описывает доступные движки шаблонов в порядке объявления.
// Формат MAIL_TEMPLATE_ENGINES: "go,sprig" или "имя:бэкенд,имя:бэкенд".
type Template struct {
	Engines []TemplateEngine
	// Предпочитаемый движок по имени; пустая строка — первый из списка.
	Preferred string
}

type TemplateEngine struct {
	Name    string
	Backend string
}

type Cleanup struct {
	RetentionDays    int
	LogRetentionDays int
}

func Load(log *zap.Logger) *Config {
	return &Config{
		HTTPPort: getEnvDefault("HTTP_PORT", ":8080"),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", log),
			Port:     getEnvInt("SMTP_PORT", log),
			User:     getEnv("SMTP_USER", log),
			Password: getEnv("SMTP_PASSWORD", log),
			From:     getEnv("SMTP_FROM", log),
			SSL:      getEnvDefault("SMTP_SSL", "true") == "true",
		},
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			GroupID:     getEnvDefault("KAFKA_GROUP_ID", "mail-service"),
			EmailTopic:  getEnvDefault("KAFKA_TOPIC_EMAIL", "emails"),
			EventsTopic: getEnvDefault("KAFKA_TOPIC_EMAIL_EVENTS", "email-events"),
		},
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ENABLED") == "true",
			Addr:       getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 300),
		},
		Dispatcher: Dispatcher{
			PollInterval:  durationDefault(os.Getenv("DISPATCH_POLL_INTERVAL"), 5*time.Second),
			Concurrency:   atoiDefault(os.Getenv("DISPATCH_CONCURRENCY"), 4),
			BatchSize:     atoiDefault(os.Getenv("DISPATCH_BATCH_SIZE"), 100),
			MaxRetries:    atoiDefault(os.Getenv("DISPATCH_MAX_RETRIES"), 2),
			RetryInterval: durationDefault(os.Getenv("DISPATCH_RETRY_INTERVAL"), 15*time.Minute),
			LockTTL:       durationDefault(os.Getenv("DISPATCH_LOCK_TTL"), 30*time.Second),
		},
		Template: Template{
			Engines:   parseEngines(getEnvDefault("MAIL_TEMPLATE_ENGINES", "go")),
			Preferred: os.Getenv("MAIL_TEMPLATE_ENGINE"),
		},
		Cleanup: Cleanup{
			RetentionDays:    atoiDefault(os.Getenv("MAIL_RETENTION_DAYS"), 90),
			LogRetentionDays: atoiDefault(os.Getenv("MAIL_LOG_RETENTION_DAYS"), 90),
		},
		DefaultBackend: getEnvDefault("MAIL_DEFAULT_BACKEND", "smtp"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("Ошибка преобразования переменной окружения в int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func durationDefault(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}

func parseEngines(s string) []TemplateEngine {
	engines := []TemplateEngine{}
	for _, part := range splitAndTrim(s) {
		name, backend := part, part
		if i := strings.IndexByte(part, ':'); i >= 0 {
			name = strings.TrimSpace(part[:i])
			backend = strings.TrimSpace(part[i+1:])
		}
		engines = append(engines, TemplateEngine{Name: name, Backend: backend})
	}
	return engines
}
