package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MissingEnvSentinel is the value a spec-surface variable takes when unset.
// Startup does not fail on these; callers check the Configured helpers instead.
const MissingEnvSentinel = "Warning: no value set for this env variable"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	OAuth    OAuthConfig
	Frontend FrontendConfig
	Logging  LoggingConfig
	Upload   UploadConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret         string
	TTL            time.Duration
	CookieName     string
	CookieSecure   bool
	CookieSameSite string
}

type OAuthConfig struct {
	GitHub GitHubOAuthConfig
}

type GitHubOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

// Load reads the environment (after a best-effort .env load) into a Config.
// The returned value is handed to constructors explicitly; there is no
// package-level instance.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Session:  loadSessionConfig(),
		OAuth:    loadOAuthConfig(),
		Frontend: loadFrontendConfig(),
		Logging:  loadLoggingConfig(),
		Upload:   loadUploadConfig(),
	}

	config.warnMissing()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(GetEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	writeTimeout, _ := strconv.Atoi(GetEnv("SERVER_WRITE_TIMEOUT_SECONDS", "15"))
	idleTimeout, _ := strconv.Atoi(GetEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Port:         GetEnv("PORT", MissingEnvSentinel),
		Environment:  GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	maxOpenConns, _ := strconv.Atoi(GetEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(GetEnv("DB_MAX_IDLE_CONNS", "5"))
	connMaxLifetime, _ := strconv.Atoi(GetEnv("DB_CONN_MAX_LIFETIME_MINUTES", "5"))

	return DatabaseConfig{
		Host:            GetEnv("DB_HOST", "localhost"),
		Port:            GetEnv("DB_PORT", "5432"),
		User:            GetEnv("DB_USER", "postgres"),
		Password:        GetEnv("DB_PASSWORD", "postgres"),
		Name:            GetEnv("DB_NAME", "planets"),
		SSLMode:         GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: time.Duration(connMaxLifetime) * time.Minute,
		MigrationsPath:  GetEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadRedisConfig() RedisConfig {
	enabled := GetEnv("REDIS_ENABLED", "true") == "true"
	db, _ := strconv.Atoi(GetEnv("REDIS_DB", "0"))

	return RedisConfig{
		Enabled:  enabled,
		URL:      GetEnv("REDIS_URL", ""),
		Host:     GetEnv("REDIS_HOST", "localhost"),
		Port:     GetEnv("REDIS_PORT", "6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func loadSessionConfig() SessionConfig {
	ttlHours, _ := strconv.Atoi(GetEnv("SESSION_TTL_HOURS", "24"))

	environment := GetEnv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"

	return SessionConfig{
		Secret:         GetEnv("SESSION_SECRET", MissingEnvSentinel),
		TTL:            time.Duration(ttlHours) * time.Hour,
		CookieName:     GetEnv("SESSION_COOKIE_NAME", "session_token"),
		CookieSecure:   cookieSecure,
		CookieSameSite: GetEnv("COOKIE_SAME_SITE", "lax"),
	}
}

func loadOAuthConfig() OAuthConfig {
	return OAuthConfig{
		GitHub: GitHubOAuthConfig{
			ClientID:     GetEnv("GITHUB_CLIENT_ID", MissingEnvSentinel),
			ClientSecret: GetEnv("GITHUB_CLIENT_SECRET", MissingEnvSentinel),
			CallbackURL:  GetEnv("GITHUB_CALLBACK_URL", MissingEnvSentinel),
			Scopes:       []string{"user:email"},
		},
	}
}

func loadFrontendConfig() FrontendConfig {
	corsDebug := GetEnv("CORS_DEBUG", "") == "true"

	return FrontendConfig{
		URL:       GetEnv("FRONTEND_URL", "http://localhost:8080"),
		CORSDebug: corsDebug,
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := GetEnv("ENVIRONMENT", "development")
	jsonFormat := environment == "production"

	return LoggingConfig{
		Level:      GetEnv("LOG_LEVEL", "debug"),
		JSONFormat: jsonFormat,
	}
}

func loadUploadConfig() UploadConfig {
	maxMiB, _ := strconv.Atoi(GetEnv("UPLOAD_MAX_FILE_SIZE_MIB", "6"))

	return UploadConfig{
		Dir:         GetEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize: int64(maxMiB) * 1024 * 1024,
	}
}

// warnMissing logs every spec-surface variable that fell back to the sentinel.
// The server still starts; OAuth routes answer 503 until configured.
func (c *Config) warnMissing() {
	logger := slog.With("component", "config")

	checks := []struct {
		name  string
		value string
	}{
		{"PORT", c.Server.Port},
		{"SESSION_SECRET", c.Session.Secret},
		{"GITHUB_CLIENT_ID", c.OAuth.GitHub.ClientID},
		{"GITHUB_CLIENT_SECRET", c.OAuth.GitHub.ClientSecret},
		{"GITHUB_CALLBACK_URL", c.OAuth.GitHub.CallbackURL},
	}

	for _, check := range checks {
		if check.value == MissingEnvSentinel {
			logger.Warn("No value set for env variable", "name", check.name)
		}
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}

	return nil
}

// ListenPort returns the port the HTTP server binds, falling back to 8080
// when PORT was never set.
func (c *Config) ListenPort() string {
	if c.Server.Port == MissingEnvSentinel || c.Server.Port == "" {
		return "8080"
	}
	return c.Server.Port
}

func (c *Config) GitHubOAuthConfigured() bool {
	gh := c.OAuth.GitHub
	return gh.ClientID != MissingEnvSentinel && gh.ClientSecret != MissingEnvSentinel &&
		gh.ClientID != "" && gh.ClientSecret != ""
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetEnv returns the value of the environment variable or the fallback when
// unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
