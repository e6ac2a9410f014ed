package config

import (
	"time"

	"github.com/spf13/viper"
)

const DefaultDatabasePath = "./library.db"

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		CORS
		Fines
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver          string // "sqlite" or "postgres"
		Path            string // sqlite file path
		DSN             string // postgres connection string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
	UI struct {
		StaticPath string // admin dashboard assets; empty disables serving
	}
	Auth struct {
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // set false for local dev without HTTPS
		RateLimitMax    int
		RateLimitWindow time.Duration
	}
	CORS struct {
		AllowedOrigin string
	}
	Fines struct {
		AccrualEnabled  bool
		AccrualSchedule string  // cron format: "0 1 * * *" = daily at 01:00
		DailyRate       float64 // per-day fine for overdue loans
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 25)
	v.SetDefault("database_max_idle_conns", 10)
	v.SetDefault("database_conn_max_lifetime", "5m")

	v.SetDefault("static_path", "")

	// Auth defaults
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_rate_limit_max", 5)
	v.SetDefault("auth_rate_limit_window", "15m")

	v.SetDefault("cors_allowed_origin", "")

	// Fine accrual defaults
	v.SetDefault("fine_accrual_enabled", false)
	v.SetDefault("fine_accrual_schedule", "0 1 * * *")
	v.SetDefault("fine_daily_rate", 0.50)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:          v.GetString("DATABASE_DRIVER"),
			Path:            v.GetString("DATABASE_PATH"),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		UI: UI{
			StaticPath: v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			RateLimitMax:    v.GetInt("AUTH_RATE_LIMIT_MAX"),
			RateLimitWindow: v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		},
		CORS: CORS{
			AllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		Fines: Fines{
			AccrualEnabled:  v.GetBool("FINE_ACCRUAL_ENABLED"),
			AccrualSchedule: v.GetString("FINE_ACCRUAL_SCHEDULE"),
			DailyRate:       v.GetFloat64("FINE_DAILY_RATE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
