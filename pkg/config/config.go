package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Catalog   CatalogConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Quote     QuoteConfig
	LLM       LLMConfig
	PDF       PDFConfig
	Telegram  TelegramConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	if cfg.Catalog.Source == CatalogSourcePostgres && cfg.DB.DSN == "" {
		return nil, fmt.Errorf("%s is required when catalog source is postgres", EnvDBDSN)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTONQ_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTONQ_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"CARTONQ_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"CARTONQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTONQ_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CARTONQ_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	CatalogSourceSheets   = "sheets"
	CatalogSourcePostgres = "postgres"

	LookupPolicyStrict   = "strict"
	LookupPolicyFallback = "fallback"
)

type CatalogConfig struct {
	Source   string        `envconfig:"CARTONQ_CATALOG_SOURCE" default:"sheets"`
	Policy   string        `envconfig:"CARTONQ_LOOKUP_POLICY" default:"strict"`
	CacheTTL time.Duration `envconfig:"CARTONQ_CATALOG_CACHE_TTL" default:"60s"`
	Timeout  time.Duration `envconfig:"CARTONQ_CATALOG_TIMEOUT" default:"10s"`

	SheetsID          string `envconfig:"CARTONQ_SHEETS_ID"`
	SheetsTab         string `envconfig:"CARTONQ_SHEETS_TAB" default:"QuoteCatalog"`
	SheetsCredentials string `envconfig:"CARTONQ_SHEETS_CREDENTIALS_FILE"`
}

func (c CatalogConfig) validate() error {
	switch c.Source {
	case CatalogSourceSheets, CatalogSourcePostgres:
	default:
		return fmt.Errorf("unsupported catalog source %q", c.Source)
	}
	switch c.Policy {
	case LookupPolicyStrict, LookupPolicyFallback:
	default:
		return fmt.Errorf("unsupported lookup policy %q", c.Policy)
	}
	if c.Source == CatalogSourceSheets && c.SheetsID == "" {
		return fmt.Errorf("%s is required when catalog source is sheets", EnvSheetsID)
	}
	return nil
}

type DBConfig struct {
	DSN string `envconfig:"CARTONQ_DB_DSN"`

	MaxOpenConns    int           `envconfig:"CARTONQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTONQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTONQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTONQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTONQ_REDIS_URL"`
	Address      string        `envconfig:"CARTONQ_REDIS_ADDR"`
	Password     string        `envconfig:"CARTONQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTONQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTONQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTONQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTONQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTONQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTONQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured at all. The quote
// rate limiter degrades to a no-op without one.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type RateLimitConfig struct {
	QuoteWindow  time.Duration `envconfig:"CARTONQ_RATE_LIMIT_QUOTE_WINDOW" default:"1m"`
	QuoteIPLimit int           `envconfig:"CARTONQ_RATE_LIMIT_QUOTE_IP_LIMIT" default:"10"`
}

type QuoteConfig struct {
	HashSalt      string        `envconfig:"CARTONQ_HASH_SALT"`
	ValidDays     int           `envconfig:"CARTONQ_QUOTE_VALID_DAYS" default:"7"`
	NotifyTimeout time.Duration `envconfig:"CARTONQ_NOTIFY_TIMEOUT" default:"30s"`
}

type LLMConfig struct {
	APIKey      string        `envconfig:"CARTONQ_GEMINI_API_KEY" required:"true"`
	Model       string        `envconfig:"CARTONQ_GEMINI_MODEL" default:"gemini-2.0-flash"`
	Temperature float32       `envconfig:"CARTONQ_GEMINI_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"CARTONQ_GEMINI_TIMEOUT" default:"60s"`
}

type PDFConfig struct {
	Dir        string        `envconfig:"CARTONQ_PDF_DIR" default:"pdf"`
	ChromePath string        `envconfig:"CARTONQ_CHROME_PATH"`
	Timeout    time.Duration `envconfig:"CARTONQ_PDF_TIMEOUT" default:"60s"`
}

type TelegramConfig struct {
	BotToken      string `envconfig:"CARTONQ_TG_BOT_TOKEN"`
	ManagerChatID string `envconfig:"CARTONQ_TG_MANAGER_CHAT_ID"`
}

// Enabled reports whether delivery to Telegram is configured. Delivery is
// best-effort either way; unconfigured just skips the stage.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ManagerChatID != ""
}
