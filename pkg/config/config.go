package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User     int64  `env:"TELEGRAM_USER"`
		BotToken string `env:"TELEGRAM_TOKEN"`
	}
	Scraper struct {
		Endpoint string        `env:"SCRAPER_ENDPOINT" env-default:"https://api.apify.com/v2/acts/apify~instagram-scraper/run-sync-get-dataset-items"`
		Token    string        `env:"SCRAPER_TOKEN"`
		Timeout  time.Duration `env:"SCRAPER_TIMEOUT" env-default:"90s"`
	}
	OpenAI struct {
		APIKey             string        `env:"OPENAI_API_KEY"`
		BaseURL            string        `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
		Model              string        `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
		TranscriptionModel string        `env:"OPENAI_TRANSCRIPTION_MODEL" env-default:"whisper-1"`
		RequestTimeout     time.Duration `env:"OPENAI_REQUEST_TIMEOUT" env-default:"120s"`
	}
	Analysis struct {
		RateLimitPerMinute int           `env:"ANALYSIS_RATE_LIMIT_PER_MINUTE" env-default:"50"`
		CacheMaxSize       int           `env:"ANALYSIS_CACHE_MAX_SIZE" env-default:"100"`
		CacheTTLMinutes    int           `env:"ANALYSIS_CACHE_TTL_MINUTES" env-default:"60"`
		FallbackEnabled    bool          `env:"ANALYSIS_FALLBACK_ENABLED" env-default:"true"`
		MaxAttempts        int           `env:"ANALYSIS_MAX_ATTEMPTS" env-default:"3"`
		CallTimeout        time.Duration `env:"ANALYSIS_CALL_TIMEOUT" env-default:"30s"`
		RetentionDays      int           `env:"ANALYSIS_RETENTION_DAYS" env-default:"30"`
	}
	Transcription struct {
		Enabled     bool   `env:"TRANSCRIPTION_ENABLED" env-default:"true"`
		ProxyURL    string `env:"TRANSCRIPTION_PROXY_URL"`
		MaxFileSize int64  `env:"TRANSCRIPTION_MAX_FILE_SIZE" env-default:"26214400"`
		MaxAttempts int    `env:"TRANSCRIPTION_MAX_ATTEMPTS" env-default:"5"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()

		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string in key/value form.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// CacheTTL returns the analysis cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Analysis.CacheTTLMinutes) * time.Minute
}
