package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string   `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv         string   `env:"APP_ENV" envDefault:"production"`
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost,http://localhost:3000,http://api:8000"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"users.db"`

	JWTSecret           string `env:"JWT_SECRET,required"`
	JWTIssuer           string `env:"JWT_ISSUER" envDefault:"leafscan"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"30"`

	Argon2MemoryKB uint32 `env:"ARGON2_MEMORY_KB" envDefault:"65536"`
	Argon2Time     uint32 `env:"ARGON2_TIME" envDefault:"1"`
	Argon2Threads  uint8  `env:"ARGON2_THREADS" envDefault:"4"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginRateLimitMax           int `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"10"`
	LoginRateLimitWindowMinutes int `env:"LOGIN_RATE_LIMIT_WINDOW_MINUTES" envDefault:"10"`

	ClassifierURL            string   `env:"CLASSIFIER_URL"`
	ClassifierModel          string   `env:"CLASSIFIER_MODEL" envDefault:"potatoes_model"`
	ClassifierTimeoutSeconds int      `env:"CLASSIFIER_TIMEOUT_SECONDS" envDefault:"30"`
	ClassNames               []string `env:"CLASS_NAMES" envSeparator:"," envDefault:"Early Blight,Late Blight,Healthy"`

	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`
}

var (
	ErrUnknownStoreDriver = errors.New("unknown store driver")
	ErrDatabaseURLMissing = errors.New("DATABASE_URL is required for the postgres store")
	ErrSQLitePathMissing  = errors.New("SQLITE_PATH is required for the sqlite store")
	ErrJWTSecretMissing   = errors.New("JWT_SECRET must not be blank")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa las combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return ErrDatabaseURLMissing
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return ErrSQLitePathMissing
		}
	case StoreDriverMemory:
	default:
		return ErrUnknownStoreDriver
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrJWTSecretMissing
	}
	return nil
}

// IsDevelopment indica si se deben usar defaults amigables para desarrollo.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// S3Enabled indica si se deben subir las imagenes escaneadas.
func (c *Config) S3Enabled() bool {
	return strings.TrimSpace(c.S3Bucket) != ""
}
