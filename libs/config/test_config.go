package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads configuration for integration tests from TEST_* variables.
// A config with an empty database host means no test database is available
// and integration tests should skip.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("../../../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	if cfg.Database.Host == "" {
		return cfg, nil
	}

	port, err := intEnv("TEST_DB_PORT", "3306")
	if err != nil {
		return nil, err
	}
	cfg.Database.Port = port
	cfg.Database.User = stringEnv("TEST_DB_USER", "root")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = stringEnv("TEST_DB_NAME", "edulearn_test")

	cfg.JWT.Secret = stringEnv("TEST_JWT_SECRET", "integration-test-secret")
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 7 * 24 * time.Hour

	cfg.APIKey = os.Getenv("TEST_API_KEY")
	cfg.Recommendation.CacheTTL = time.Minute

	return cfg, nil
}
