package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Bot          BotConfig
	ServiceNow   ServiceNowConfig
	Graph        GraphConfig
	Retry        RetryConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory table store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token validation parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	UserTokenTTLMinutes   int
}

// BotConfig describes the Teams bot registration and where cards are posted.
type BotConfig struct {
	AppID              string
	ConnectorToken     string
	TenantID           string
	TeamChannelID      string
	TeamServiceURL     string
	AppBaseURL         string
	SignInURL          string
	TaskModuleHeight   int
	TaskModuleWidth    int
	BridgeDialInPrefix string
	Bridges            []string
}

// ServiceNowConfig points at the ticketing backend.
type ServiceNowConfig struct {
	BaseURL  string
	Username string
	Password string
}

// GraphConfig points at Microsoft Graph.
type GraphConfig struct {
	BaseURL        string
	AccessToken    string
	GroupID        string
	MemberCacheTTL int
}

// RetryConfig shapes the outbound HTTP retry policy.
type RetryConfig struct {
	MaxAttempts   int
	BaseDelayMS   int
	ClientTimeout int
}

// NotificationConfig holds the optional incident event webhook.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "bart-incident-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3978"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "bart"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			UserTokenTTLMinutes:   getEnvAsInt("AUTH_USER_TOKEN_TTL_MINUTES", 60),
		},
		Bot: BotConfig{
			AppID:              os.Getenv("BOT_APP_ID"),
			ConnectorToken:     os.Getenv("BOT_CONNECTOR_TOKEN"),
			TenantID:           os.Getenv("BOT_TENANT_ID"),
			TeamChannelID:      os.Getenv("BOT_TEAM_CHANNEL_ID"),
			TeamServiceURL:     getEnv("BOT_TEAM_SERVICE_URL", "https://smba.trafficmanager.net/amer/"),
			AppBaseURL:         strings.TrimRight(getEnv("BOT_APP_BASE_URL", "http://localhost:3000"), "/"),
			SignInURL:          getEnv("BOT_SIGNIN_URL", "http://localhost:3000/signin"),
			TaskModuleHeight:   getEnvAsInt("BOT_TASK_MODULE_HEIGHT", 600),
			TaskModuleWidth:    getEnvAsInt("BOT_TASK_MODULE_WIDTH", 800),
			BridgeDialInPrefix: getEnv("BOT_BRIDGE_DIALIN_PREFIX", ""),
			Bridges:            getEnvAsList("BOT_CONFERENCE_BRIDGES"),
		},
		ServiceNow: ServiceNowConfig{
			BaseURL:  strings.TrimRight(getEnv("SERVICENOW_BASE_URL", "https://example.service-now.com"), "/"),
			Username: os.Getenv("SERVICENOW_USERNAME"),
			Password: os.Getenv("SERVICENOW_PASSWORD"),
		},
		Graph: GraphConfig{
			BaseURL:        strings.TrimRight(getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com"), "/"),
			AccessToken:    os.Getenv("GRAPH_ACCESS_TOKEN"),
			GroupID:        os.Getenv("GRAPH_GROUP_ID"),
			MemberCacheTTL: getEnvAsInt("GRAPH_MEMBER_CACHE_TTL_SECONDS", 300),
		},
		Retry: RetryConfig{
			MaxAttempts:   getEnvAsInt("HTTP_RETRY_MAX_ATTEMPTS", 3),
			BaseDelayMS:   getEnvAsInt("HTTP_RETRY_BASE_DELAY_MS", 200),
			ClientTimeout: getEnvAsInt("HTTP_CLIENT_TIMEOUT_SECONDS", 30),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BaseDelay returns the first retry delay.
func (r RetryConfig) BaseDelay() time.Duration {
	if r.BaseDelayMS <= 0 {
		return 0
	}
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// Timeout returns the outbound client timeout.
func (r RetryConfig) Timeout() time.Duration {
	if r.ClientTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.ClientTimeout) * time.Second
}

// MemberCacheDuration returns how long group members stay cached.
func (g GraphConfig) MemberCacheDuration() time.Duration {
	return time.Duration(g.MemberCacheTTL) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
