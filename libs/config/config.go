// Package config provides configuration for the EduLearn services
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database       DatabaseConfig
	Redis          RedisConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	JWT            JWTConfig
	SMTP           SMTPConfig
	NATS           NATSConfig
	LLM            LLMConfig
	Recommendation RecommendationConfig
	Schedule       ScheduleConfig
	Explorer       ExplorerConfig
	APIKey         string
	// LearnServiceBaseURL is used by the worker to resolve user contacts
	LearnServiceBaseURL string
}

// DatabaseConfig holds MySQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port for Redis clients
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
	// SecureCookies marks auth cookies as HTTPS only
	SecureCookies bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NATSConfig holds the event bus connection. An empty URL disables events.
type NATSConfig struct {
	URL string
}

// LLMConfig selects the quiz question provider. An empty provider means templates only.
type LLMConfig struct {
	Provider        string
	Model           string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GeminiAPIKey    string
	Timeout         time.Duration
}

// RecommendationConfig holds recommendation cache settings
type RecommendationConfig struct {
	CacheTTL time.Duration
}

// ScheduleConfig holds cron expressions used by the scheduler
type ScheduleConfig struct {
	ReminderCron     string
	DailyResetCron   string
	TokenCleanupCron string
	// APIPort serves the task-service admin API
	APIPort int
	// Concurrency is the number of asynq worker goroutines
	Concurrency int
}

// ExplorerConfig holds data explorer settings
type ExplorerConfig struct {
	DBPath       string
	StoragePath  string
	MaxUploadMB  int
	BaseURL      string
	PreviewLimit int
	// HTTP server timeouts, longer than the other services for CSV uploads
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration for the MySQL backed services from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}

	if err := loadDatabase(cfg); err != nil {
		return nil, err
	}

	if err := loadShared(cfg, "8080"); err != nil {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	accessExpiry, err := durationEnv("JWT_ACCESS_TOKEN_EXPIRY", "1h")
	if err != nil {
		return nil, err
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	// 7 days
	refreshExpiry, err := durationEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h")
	if err != nil {
		return nil, err
	}
	cfg.JWT.RefreshTokenExpiry = refreshExpiry

	if err := loadRedis(cfg); err != nil {
		return nil, err
	}

	if err := loadSMTP(cfg); err != nil {
		return nil, err
	}

	if err := loadLLM(cfg); err != nil {
		return nil, err
	}

	cacheTTL, err := durationEnv("RECOMMENDATION_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	cfg.Recommendation.CacheTTL = cacheTTL

	cfg.Schedule.ReminderCron = stringEnv("REMINDER_CRON", "0 18 * * *")
	cfg.Schedule.DailyResetCron = stringEnv("DAILY_RESET_CRON", "5 0 * * *")
	cfg.Schedule.TokenCleanupCron = stringEnv("TOKEN_CLEANUP_CRON", "30 3 * * *")

	apiPort, err := intEnv("TASK_API_PORT", "8082")
	if err != nil {
		return nil, err
	}
	cfg.Schedule.APIPort = apiPort

	concurrency, err := intEnv("TASK_CONCURRENCY", "10")
	if err != nil {
		return nil, err
	}
	cfg.Schedule.Concurrency = concurrency

	cfg.LearnServiceBaseURL = stringEnv("LEARN_SERVICE_BASE_URL", "http://localhost:8080")

	return cfg, nil
}

// LoadExplorer reads configuration for the data explorer, which keeps its own SQLite store
func LoadExplorer() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := loadShared(cfg, "8081"); err != nil {
		return nil, err
	}

	cfg.Explorer.DBPath = stringEnv("EXPLORER_DB_PATH", "data/explorer.db")
	cfg.Explorer.StoragePath = stringEnv("EXPLORER_STORAGE_PATH", "data/uploads")
	cfg.Explorer.BaseURL = stringEnv("EXPLORER_BASE_URL", "http://localhost:8081")

	maxUpload, err := intEnv("EXPLORER_MAX_UPLOAD_MB", "50")
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("EXPLORER_MAX_UPLOAD_MB must be positive")
	}
	cfg.Explorer.MaxUploadMB = maxUpload

	previewLimit, err := intEnv("EXPLORER_PREVIEW_LIMIT", "100")
	if err != nil {
		return nil, err
	}
	cfg.Explorer.PreviewLimit = previewLimit

	if cfg.Explorer.ReadTimeout, err = durationEnv("EXPLORER_READ_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Explorer.WriteTimeout, err = durationEnv("EXPLORER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Explorer.IdleTimeout, err = durationEnv("EXPLORER_IDLE_TIMEOUT", "120s"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDatabase(cfg *Config) error {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	return nil
}

// loadShared fills the settings every service uses
func loadShared(cfg *Config, defaultPort string) error {
	serverPort, err := intEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return err
	}
	cfg.Server.Port = serverPort
	cfg.Server.SecureCookies = strings.EqualFold(os.Getenv("SECURE_COOKIES"), "true")

	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// API key is optional, it guards service-to-service and explorer routes
	cfg.APIKey = os.Getenv("API_KEY")

	cfg.NATS.URL = os.Getenv("NATS_URL")

	return nil
}

func loadRedis(cfg *Config) error {
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")

	redisPort, err := intEnv("REDIS_PORT", "6379")
	if err != nil {
		return err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	redisDB, err := intEnv("REDIS_DB", "0")
	if err != nil {
		return err
	}
	cfg.Redis.DB = redisDB

	return nil
}

func loadSMTP(cfg *Config) error {
	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")

	smtpPort, err := intEnv("SMTP_PORT", "587")
	if err != nil {
		return err
	}
	cfg.SMTP.Port = smtpPort

	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@edulearn.local")

	return nil
}

func loadLLM(cfg *Config) error {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	switch provider {
	case "", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: must be openai, anthropic or gemini", provider)
	}
	cfg.LLM.Provider = provider
	cfg.LLM.Model = os.Getenv("LLM_MODEL")
	cfg.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	timeout, err := durationEnv("LLM_TIMEOUT", "30s")
	if err != nil {
		return err
	}
	cfg.LLM.Timeout = timeout

	return nil
}

// parseOrigins splits a comma-separated origin list, defaulting to "*"
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func stringEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key, fallback string) (int, error) {
	value, err := strconv.Atoi(stringEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(stringEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// DSN returns the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
