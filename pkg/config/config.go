package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ASSETDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Migrate  MigrateConfig
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
	Env          string `envconfig:"ASSETDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"ASSETDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ASSETDESK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ASSETDESK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ASSETDESK_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ASSETDESK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ASSETDESK_DB_DSN"`

	Host     string `envconfig:"ASSETDESK_DB_HOST"`
	Port     int    `envconfig:"ASSETDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"ASSETDESK_DB_USER"`
	Password string `envconfig:"ASSETDESK_DB_PASSWORD"`
	Name     string `envconfig:"ASSETDESK_DB_NAME"`
	SSLMode  string `envconfig:"ASSETDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ASSETDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ASSETDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ASSETDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ASSETDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either ASSETDESK_DB_DSN or ASSETDESK_DB_{HOST,USER,NAME} must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"ASSETDESK_REDIS_URL"`
	Address      string        `envconfig:"ASSETDESK_REDIS_ADDR"`
	Password     string        `envconfig:"ASSETDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASSETDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASSETDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASSETDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASSETDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASSETDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASSETDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ASSETDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ASSETDESK_JWT_ISSUER" default:"assetdesk"`
	ExpirationMinutes int    `envconfig:"ASSETDESK_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"ASSETDESK_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ASSETDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ASSETDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ASSETDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ASSETDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ASSETDESK_ARGON_KEY_LEN" default:"32"`
}

type MigrateConfig struct {
	AutoRun bool   `envconfig:"ASSETDESK_MIGRATE_AUTORUN" default:"false"`
	Dir     string `envconfig:"ASSETDESK_MIGRATE_DIR" default:"pkg/migrate/migrations"`
}
