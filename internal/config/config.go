package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gamewatch/notifier/internal/domain"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; DATABASE_URL and MAIL_API_KEY are
// required.
type Config struct {
	// Ops HTTP server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Worker pool
	Concurrency   int
	QueueCapacity int
	LookupTimeout time.Duration

	// Job retry policy: index 0 = delay before the first redelivery, etc.
	MaxAttempts  int
	RetryBackoff []time.Duration

	// Background poll intervals
	RetryInterval    time.Duration
	RecoveryInterval time.Duration
	// Jobs pending or queued longer than this are considered lost in
	// dispatch and re-enqueued by the recovery worker.
	RecoveryAge time.Duration

	// Mail provider
	MailAPIURL     string
	MailAPIKey     string
	MailTimeout    time.Duration
	MailRatePerSec int
	MailTemplates  map[domain.NotificationType]string

	// Error tracking collector; empty disables reporting.
	ReportURL     string
	ReportTimeout time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	mailKey := os.Getenv("MAIL_API_KEY")
	if mailKey == "" {
		return nil, fmt.Errorf("MAIL_API_KEY is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		Concurrency:   getInt("CREATE_NOTIFICATIONS_CONCURRENCY", 5),
		QueueCapacity: getInt("QUEUE_CAPACITY", 5000),
		LookupTimeout: getDuration("LOOKUP_TIMEOUT", 5*time.Second),

		MaxAttempts: getInt("JOB_MAX_ATTEMPTS", 4),
		RetryBackoff: []time.Duration{
			getDuration("RETRY_BACKOFF_1", 5*time.Second),
			getDuration("RETRY_BACKOFF_2", 30*time.Second),
			getDuration("RETRY_BACKOFF_3", 120*time.Second),
		},

		RetryInterval:    getDuration("RETRY_INTERVAL", 10*time.Second),
		RecoveryInterval: getDuration("RECOVERY_INTERVAL", 30*time.Second),
		RecoveryAge:      getDuration("RECOVERY_AGE", time.Minute),

		MailAPIURL:     getEnv("MAIL_API_URL", "https://api.sendgrid.com/v3/mail/send"),
		MailAPIKey:     mailKey,
		MailTimeout:    getDuration("MAIL_TIMEOUT", 10*time.Second),
		MailRatePerSec: getInt("MAIL_RATE_PER_SEC", 10),
		MailTemplates: map[domain.NotificationType]string{
			domain.NotificationGameReduced:         getEnv("MAIL_TEMPLATE_GAME_REDUCED", "d-game-reduced"),
			domain.NotificationGameReleased:        getEnv("MAIL_TEMPLATE_GAME_RELEASED", "d-game-released"),
			domain.NotificationNewMetacriticRating: getEnv("MAIL_TEMPLATE_NEW_METACRITIC_RATING", "d-new-metacritic-rating"),
			domain.NotificationNewStoreEntry:       getEnv("MAIL_TEMPLATE_NEW_STORE_ENTRY", "d-new-store-entry"),
			domain.NotificationReleaseDateChanged:  getEnv("MAIL_TEMPLATE_RELEASE_DATE_CHANGED", "d-release-date-changed"),
		},

		ReportURL:     getEnv("REPORT_URL", ""),
		ReportTimeout: getDuration("REPORT_TIMEOUT", 5*time.Second),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
