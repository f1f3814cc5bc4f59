package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// insecureJWTSecret is the placeholder secret used when JWT_SECRET is unset
const insecureJWTSecret = "secret"

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Gemini    GeminiConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL         string `envconfig:"DATABASE_URL"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_notes"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	// MigrationsDir holds the sql-migrate files
	MigrationsDir string `envconfig:"DB_MIGRATIONS_DIR" default:"migrations"`
}

// MongoDBConfig holds the document database used for meeting vectors
type MongoDBConfig struct {
	URI         string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	Database    string        `envconfig:"MONGODB_DATABASE" default:"meeting_notes"`
	Collection  string        `envconfig:"MONGODB_COLLECTION" default:"meetings_vector"`
	VectorIndex string        `envconfig:"MONGODB_VECTOR_INDEX" default:"embedding_index"`
	Timeout     time.Duration `envconfig:"MONGODB_TIMEOUT" default:"10s"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"secret"`
	Expiry time.Duration `envconfig:"JWT_EXPIRY" default:"168h"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"meeting-notes"`
}

// GeminiConfig holds the generative-language API configuration
type GeminiConfig struct {
	APIKey         string        `envconfig:"GEMINI_API_KEY"`
	BaseURL        string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Model          string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-lite"`
	EmbeddingModel string        `envconfig:"GEMINI_EMBEDDING_MODEL" default:"text-embedding-004"`
	Timeout        time.Duration `envconfig:"GEMINI_TIMEOUT" default:"60s"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RateLimitConfig limits calls to the summarization and search endpoints
type RateLimitConfig struct {
	Enabled bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64       `envconfig:"RATE_LIMIT_RPS" default:"1"`
	Burst   int           `envconfig:"RATE_LIMIT_BURST" default:"5"`
	Window  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// StorageConfig holds object storage configuration for the transcript archive
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-transcripts"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// ReconcileConfig drives the background embedding reconciler
type ReconcileConfig struct {
	Enabled         bool          `envconfig:"RECONCILE_ENABLED" default:"true"`
	Interval        time.Duration `envconfig:"RECONCILE_INTERVAL" default:"30s"`
	SweepInterval   time.Duration `envconfig:"RECONCILE_SWEEP_INTERVAL" default:"10m"`
	SweepWindow     time.Duration `envconfig:"RECONCILE_SWEEP_WINDOW" default:"24h"`
	BatchSize       int           `envconfig:"RECONCILE_BATCH_SIZE" default:"10"`
	RetryMaxElapsed time.Duration `envconfig:"RECONCILE_RETRY_MAX_ELAPSED" default:"30s"`
	JobTimeout      time.Duration `envconfig:"RECONCILE_JOB_TIMEOUT" default:"2m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv processes each section from the current environment without
// touching .env files.
func FromEnv() (*Config, error) {
	config := &Config{}
	sections := []struct {
		name string
		spec interface{}
	}{
		{"server", &config.Server},
		{"database", &config.Database},
		{"mongodb", &config.MongoDB},
		{"jwt", &config.JWT},
		{"gemini", &config.Gemini},
		{"redis", &config.Redis},
		{"rate limit", &config.RateLimit},
		{"storage", &config.Storage},
		{"reconcile", &config.Reconcile},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST non-negative")
	}
	if c.IsProduction() {
		if c.JWT.Secret == insecureJWTSecret || c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required in production")
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// UsesInsecureJWTSecret reports whether the placeholder signing secret is active
func (c *Config) UsesInsecureJWTSecret() bool {
	return c.JWT.Secret == insecureJWTSecret
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
