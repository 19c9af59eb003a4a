package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration.
type Config struct {
	Port        int
	Environment string // "development" or "production"

	// Public base URL of the application, used to build the OAuth callback URL.
	AppURL string

	// Identity provider (Twitter-shaped OAuth 2.0)
	ProviderClientID     string
	ProviderClientSecret string
	ProviderAuthURL      string // Optional override (mock provider, tests)
	ProviderTokenURL     string // Optional override
	ProviderUserURL      string // Optional override
	ProviderScopes       []string
	PKCEEnabled          bool

	// CSRF state signing
	SessionSecret string
	StateTTLSecs  int

	// Database
	DatabaseURL string

	// Attempt Store
	AttemptRedisStoreEnabled bool
	AttemptRedisStorePrefix  string

	// Redis
	RedisEnabled bool
	RedisHost    string
	RedisPort    int
	RedisProto   string
	RedisPass    string
	RedisDB      int

	// Capabilities
	WalletEnabled bool

	// Static front-end bundle
	StaticDir string
}

// envKeyTransform transforms environment variable names to koanf keys.
// APP_PROVIDER_CLIENT_ID -> provider.client.id
func envKeyTransform(s string) string {
	return strings.ReplaceAll(
		strings.ToLower(strings.TrimPrefix(s, "APP_")),
		"_",
		".",
	)
}

// Load loads configuration from .env files and environment variables.
// The loading order is:
// 1. .env file (if exists)
// 2. .env.local file (if exists)
// 3. Environment variables (override files)
//
// Environment variables use the APP_ prefix and underscore separation.
// Example: APP_PROVIDER_CLIENT_ID -> provider.client.id
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from the specified directory.
// If path is empty, uses current directory.
func LoadFromPath(path string) (*Config, error) {
	k := koanf.New(".")

	envFile := ".env"
	envLocalFile := ".env.local"
	if path != "" {
		envFile = path + "/" + envFile
		envLocalFile = path + "/" + envLocalFile
	}

	// Load .env file if it exists (base configuration)
	if _, err := os.Stat(envFile); err == nil {
		if err := k.Load(file.Provider(envFile), dotenv.ParserEnv("APP_", ".", envKeyTransform)); err != nil {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Load .env.local file if it exists (local overrides, typically gitignored)
	if _, err := os.Stat(envLocalFile); err == nil {
		if err := k.Load(file.Provider(envLocalFile), dotenv.ParserEnv("APP_", ".", envKeyTransform)); err != nil {
			return nil, fmt.Errorf("loading .env.local file: %w", err)
		}
	}

	// Load environment variables with APP_ prefix (override files)
	err := k.Load(env.Provider("APP_", ".", envKeyTransform), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Also load common unprefixed names (platform conventions)
	_ = k.Load(env.Provider("", ".", func(s string) string {
		switch s {
		case "PORT":
			return "port"
		case "DATABASE_URL":
			return "database.url"
		case "GO_ENV":
			return "environment"
		}
		return ""
	}), nil)

	cfg := &Config{
		Port:        k.Int("port"),
		Environment: k.String("environment"),

		AppURL: strings.TrimSuffix(k.String("url"), "/"),

		ProviderClientID:     k.String("provider.client.id"),
		ProviderClientSecret: k.String("provider.client.secret"),
		ProviderAuthURL:      k.String("provider.auth.url"),
		ProviderTokenURL:     k.String("provider.token.url"),
		ProviderUserURL:      k.String("provider.user.url"),
		PKCEEnabled:          k.String("provider.pkce.enabled") != "0",

		SessionSecret: k.String("session.secret"),
		StateTTLSecs:  k.Int("state.ttl.secs"),

		DatabaseURL: k.String("database.url"),

		AttemptRedisStoreEnabled: k.String("attempt.redis.store.enabled") == "1",
		AttemptRedisStorePrefix:  k.String("attempt.redis.store.prefix"),

		RedisEnabled: k.String("redis.enabled") == "1",
		RedisHost:    k.String("redis.host"),
		RedisPort:    k.Int("redis.port"),
		RedisProto:   k.String("redis.proto"),
		RedisPass:    k.String("redis.pass"),
		RedisDB:      k.Int("redis.db"),

		WalletEnabled: k.String("wallet.enabled") != "0",

		StaticDir: k.String("static.dir"),
	}

	if scopes := k.String("provider.scopes"); scopes != "" {
		cfg.ProviderScopes = strings.Fields(scopes)
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.StateTTLSecs == 0 {
		cfg.StateTTLSecs = 600
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "dist"
	}
	if cfg.RedisPort == 0 {
		cfg.RedisPort = 6379
	}
	if cfg.RedisProto == "" {
		cfg.RedisProto = "rediss"
	}

	return cfg, nil
}

// Production reports whether the process runs in production mode.
// Controls TLS verification laxity toward the managed database.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// CallbackURL returns the OAuth callback URL derived from the app base URL.
func (c *Config) CallbackURL() string {
	return c.AppURL + "/api/auth/callback"
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	var missing []string

	if c.ProviderClientID == "" {
		missing = append(missing, "APP_PROVIDER_CLIENT_ID")
	}
	if c.ProviderClientSecret == "" {
		missing = append(missing, "APP_PROVIDER_CLIENT_SECRET")
	}
	if c.AppURL == "" {
		missing = append(missing, "APP_URL")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "APP_SESSION_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// LogConfig logs the configuration (with secrets redacted).
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		"port", c.Port,
		"environment", c.Environment,
		"app_url", c.AppURL,
		"provider_client_id_set", c.ProviderClientID != "",
		"pkce_enabled", c.PKCEEnabled,
		"wallet_enabled", c.WalletEnabled,
		"redis_enabled", c.RedisEnabled,
		"attempt_redis_store_enabled", c.AttemptRedisStoreEnabled,
		"static_dir", c.StaticDir,
	)
}
