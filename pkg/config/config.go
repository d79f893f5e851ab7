package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
		APISecret string `env:"APP_API_SECRET"`

		// AllowAnonymous serves the API without a secret. Local development only.
		AllowAnonymous bool `env:"APP_API_ALLOW_ANONYMOUS" env-default:"false"`
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
		Token          string        `env:"TELEGRAM_TOKEN"`
		RateRequests   int           `env:"TELEGRAM_RATE_REQUESTS" env-default:"5"`
		RateWindow     time.Duration `env:"TELEGRAM_RATE_WINDOW" env-default:"1m"`
		RateBurst      int           `env:"TELEGRAM_RATE_BURST" env-default:"3"`
		CommandTimeout time.Duration `env:"TELEGRAM_COMMAND_TIMEOUT" env-default:"2m"`
	}
	Instagram struct {
		BaseURL        string        `env:"INSTAGRAM_BASE_URL" env-default:"https://www.instagram.com/"`
		GraphQLURL     string        `env:"INSTAGRAM_GRAPHQL_URL" env-default:"https://www.instagram.com/graphql/query"`
		DocID          string        `env:"INSTAGRAM_DOC_ID" env-default:"9510064595728286"`
		UserAgent      string        `env:"INSTAGRAM_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
		ProxyURL       string        `env:"INSTAGRAM_PROXY_URL"`
		RequestTimeout time.Duration `env:"INSTAGRAM_REQUEST_TIMEOUT" env-default:"30s"`
		Retries        int           `env:"INSTAGRAM_RETRIES" env-default:"5"`
		InitialDelay   time.Duration `env:"INSTAGRAM_INITIAL_DELAY" env-default:"1s"`
		MaxDelay       time.Duration `env:"INSTAGRAM_MAX_DELAY" env-default:"0s"`
	}
	Resolver struct {
		Workers  int           `env:"RESOLVER_WORKERS" env-default:"16"`
		CacheTTL time.Duration `env:"RESOLVER_CACHE_TTL" env-default:"6h"`
	}
	Scoring struct {
		MaxViews      float64 `env:"SCORING_MAX_VIEWS" env-default:"50000000"`
		MaxDuration   float64 `env:"SCORING_MAX_DURATION" env-default:"180"`
		MaxTotalPosts float64 `env:"SCORING_MAX_TOTAL_POSTS" env-default:"1000"`
		MaxFollowers  float64 `env:"SCORING_MAX_FOLLOWERS" env-default:"50000000"`
		MaxAgeHours   float64 `env:"SCORING_MAX_AGE_HOURS" env-default:"168"`
		MaxPlays      float64 `env:"SCORING_MAX_PLAYS" env-default:"50000000"`

		WeightAge        float64 `env:"SCORING_WEIGHT_AGE" env-default:"0.25"`
		WeightViews      float64 `env:"SCORING_WEIGHT_VIEWS" env-default:"0.20"`
		WeightDuration   float64 `env:"SCORING_WEIGHT_DURATION" env-default:"0.15"`
		WeightPlays      float64 `env:"SCORING_WEIGHT_PLAYS" env-default:"0.15"`
		WeightTotalPosts float64 `env:"SCORING_WEIGHT_TOTAL_POSTS" env-default:"0.10"`
		WeightFollowers  float64 `env:"SCORING_WEIGHT_FOLLOWERS" env-default:"0.15"`
	}
	Jobs struct {
		RescoreInterval time.Duration `env:"JOBS_RESCORE_INTERVAL" env-default:"30m"`
		Retention       time.Duration `env:"JOBS_RETENTION" env-default:"720h"`
		Timezone        string        `env:"JOBS_TIMEZONE" env-default:"UTC"`
	}
}

var (
	once    sync.Once
	cfg     *Config
	loadErr error
)

// New loads the configuration once from .env when present, else from the
// environment. A failed load is returned on every call.
func New() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = load()
	})
	return cfg, loadErr
}

func load() (*Config, error) {
	c := &Config{}
	var err error
	if _, statErr := os.Stat(".env"); statErr == nil {
		err = cleanenv.ReadConfig(".env", c)
	} else {
		err = cleanenv.ReadEnv(c)
	}
	if err != nil {
		help, _ := cleanenv.GetDescription(c, nil)
		return nil, fmt.Errorf("read configuration: %w\n%s", err, help)
	}
	return c, nil
}

// GetDSN returns the postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

// TelegramEnabled reports whether the bot front-end should be started.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}
