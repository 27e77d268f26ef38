package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Magic        MagicConfig
	RateLimit    RateLimitConfig
	Import       ImportConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LEADFOLIO_APP_ENV" required:"true"`
	Port         string `envconfig:"LEADFOLIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEADFOLIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEADFOLIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEADFOLIO_DB_DSN"`
	Driver string `envconfig:"LEADFOLIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEADFOLIO_DB_HOST"`
	LegacyPort     int    `envconfig:"LEADFOLIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEADFOLIO_DB_USER"`
	LegacyPassword string `envconfig:"LEADFOLIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEADFOLIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEADFOLIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEADFOLIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEADFOLIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEADFOLIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEADFOLIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEADFOLIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEADFOLIO_REDIS_ADDR"`
	Password     string        `envconfig:"LEADFOLIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEADFOLIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEADFOLIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEADFOLIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEADFOLIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEADFOLIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEADFOLIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig drives the signed session cookie and its server-side record.
type SessionConfig struct {
	Secret     string `envconfig:"LEADFOLIO_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"LEADFOLIO_SESSION_ISSUER" default:"leadfolio"`
	TTLMinutes int    `envconfig:"LEADFOLIO_SESSION_TTL_MINUTES" default:"10080"`
	CookieName string `envconfig:"LEADFOLIO_SESSION_COOKIE" default:"leadfolio_session"`
}

// TTL returns the session lifetime configured in minutes.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// MagicConfig holds the identity-provider verification secret.
type MagicConfig struct {
	Secret string `envconfig:"LEADFOLIO_MAGIC_SECRET" required:"true"`
	Issuer string `envconfig:"LEADFOLIO_MAGIC_ISSUER" default:"magic"`
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"LEADFOLIO_RATE_LIMIT_WINDOW" default:"1m"`
	Limit    int           `envconfig:"LEADFOLIO_RATE_LIMIT_LIMIT" default:"5"`
	InMemory bool          `envconfig:"LEADFOLIO_RATE_LIMIT_IN_MEMORY" default:"false"`
}

type ImportConfig struct {
	MaxRows int `envconfig:"LEADFOLIO_IMPORT_MAX_ROWS" default:"200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LEADFOLIO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
