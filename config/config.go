package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// LockTimeout bounds how long a reservation transaction waits on a
	// contended train row before failing with a retryable error.
	LockTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

var AppConfig *Config

func LoadConfig() *Config {
	// Missing .env is fine, plain environment variables still apply.
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Auth:     GetAuthConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := DatabaseConfig{
		Host:        "localhost",
		Port:        "5433", // test DB on 5433
		User:        "postgres",
		Password:    "postgres",
		DBName:      "test_db",
		SSLMode:     "disable",
		LockTimeout: 3 * time.Second,
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // test Redis on 6380
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: testConfig,
		Redis:    testRedisConfig,
		Auth: AuthConfig{
			JWTSecret:  "test-secret",
			TokenTTL:   15 * time.Minute,
			BcryptCost: 4, // bcrypt.MinCost, keeps auth tests fast
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnv("SERVER_PORT", "8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	lockTimeoutMs, err := strconv.Atoi(getEnv("DB_LOCK_TIMEOUT_MS", "3000"))
	if err != nil {
		panic(err)
	}

	return DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        getEnv("DB_PORT", "5432"),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "postgres"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		LockTimeout: time.Duration(lockTimeoutMs) * time.Millisecond,
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetAuthConfig() AuthConfig {
	ttlMin, err := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_MIN", "30"))
	if err != nil {
		panic(err)
	}
	cost, err := strconv.Atoi(getEnv("AUTH_BCRYPT_COST", "10"))
	if err != nil {
		panic(err)
	}

	return AuthConfig{
		JWTSecret:  getEnv("AUTH_JWT_SECRET", "change-me"),
		TokenTTL:   time.Duration(ttlMin) * time.Minute,
		BcryptCost: cost,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
