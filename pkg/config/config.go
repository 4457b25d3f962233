package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Register     RegisterConfig
	Ledger       LedgerConfig
	Search       SearchConfig
	Journal      JournalConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Diagnostics  DiagnosticsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PDV_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PDV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PDV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RegisterConfig identifies the till and its linked stock location. These are
// read-only context supplied at provisioning time; the engine never mutates them.
type RegisterConfig struct {
	CompanyID  string `envconfig:"PDV_COMPANY_ID" required:"true"`
	RegisterID string `envconfig:"PDV_REGISTER_ID"`
	DepositID  string `envconfig:"PDV_DEPOSIT_ID" required:"true"`
	LocalID    string `envconfig:"PDV_REGISTER_LOCAL_ID" default:"caixa-01"`
}

type LedgerConfig struct {
	BaseURL string        `envconfig:"PDV_LEDGER_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"PDV_LEDGER_TIMEOUT" default:"15s"`
}

type SearchConfig struct {
	Debounce time.Duration `envconfig:"PDV_SEARCH_DEBOUNCE" default:"250ms"`
	Limit    int           `envconfig:"PDV_SEARCH_LIMIT" default:"10"`
}

type JournalConfig struct {
	Driver string `envconfig:"PDV_JOURNAL_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"PDV_JOURNAL_DSN" default:"file:pdv-journal.db?_pragma=busy_timeout(5000)"`

	MaxOpenConns    int           `envconfig:"PDV_JOURNAL_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"PDV_JOURNAL_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"PDV_JOURNAL_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PDV_JOURNAL_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"PDV_JOURNAL_AUTO_MIGRATE" default:"true"`
}

// RedisConfig is optional: sites running several tills against one backend can
// point them at a shared Redis so commit idempotency keys are visible fleet-wide.
type RedisConfig struct {
	URL          string        `envconfig:"PDV_REDIS_URL"`
	PoolSize     int           `envconfig:"PDV_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"PDV_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"PDV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PDV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PDV_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PDV_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PDV_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PDV_JWT_EXPIRATION_MINUTES" default:"720"`
}

type DiagnosticsConfig struct {
	Enabled bool   `envconfig:"PDV_DIAGNOSTICS_ENABLED" default:"true"`
	Port    string `envconfig:"PDV_DIAGNOSTICS_PORT" default:"9464"`
}

// FeatureFlagsConfig mirrors the backend stock policy. The engine does not
// enforce these locally; they only inform how commit rejections are interpreted.
type FeatureFlagsConfig struct {
	BlockSaleWithoutStock bool `envconfig:"PDV_BLOCK_SALE_WITHOUT_STOCK" default:"true"`
	AllowNegativeStock    bool `envconfig:"PDV_ALLOW_NEGATIVE_STOCK" default:"false"`
}
