package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

type Config struct {
	ServerPort  string
	AppEnv      string
	AuthDevMode bool
	LogLevel    string
	DB          DBConfig
	Cognito     CognitoConfig
	Redis       RedisConfig
	Anthropic   AnthropicConfig
	Mail        MailConfig
	Gmail       GmailConfig
	Discord     DiscordConfig
	Jobs        JobsConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid REDIS_DB %d: must not be negative", c.Redis.DB)
	}
	if c.Jobs.AccountabilityInterval < 0 {
		return fmt.Errorf("invalid ACCOUNTABILITY_INTERVAL %s: must not be negative", c.Jobs.AccountabilityInterval)
	}
	if c.Jobs.CommunicationSyncInterval < 0 {
		return fmt.Errorf("invalid COMMUNICATION_SYNC_INTERVAL %s: must not be negative", c.Jobs.CommunicationSyncInterval)
	}
	if !c.AuthDevMode {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_DEV_MODE is disabled")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_DEV_MODE is disabled")
		}
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Migrate applies the embedded schema at startup.
	Migrate bool
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

// RedisConfig locates the push-event bus. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type MailConfig struct {
	SendGridAPIKey string
	FromName       string
	FromAddress    string
	ToAddress      string
}

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type DiscordConfig struct {
	BotToken string
}

// JobsConfig sets the background job intervals. Zero disables a job.
type JobsConfig struct {
	AccountabilityInterval    time.Duration
	CommunicationSyncInterval time.Duration
	EventHeartbeat            time.Duration
}

func Load() Config {
	return Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		AuthDevMode: strings.EqualFold(envOrDefault("AUTH_DEV_MODE", "false"), "true"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "vici"),
			Password: envOrDefault("DB_PASSWORD", "vici"),
			Name:     envOrDefault("DB_NAME", "vici"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
			Migrate:  envBool("DB_MIGRATE", true),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  os.Getenv("ANTHROPIC_MODEL"),
		},
		Mail: MailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromName:       envOrDefault("MAIL_FROM_NAME", "Vici"),
			FromAddress:    os.Getenv("MAIL_FROM_ADDRESS"),
			ToAddress:      os.Getenv("MAIL_TO_ADDRESS"),
		},
		Gmail: GmailConfig{
			ClientID:     os.Getenv("GMAIL_CLIENT_ID"),
			ClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
			RefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
		},
		Discord: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
		Jobs: JobsConfig{
			AccountabilityInterval:    envDuration("ACCOUNTABILITY_INTERVAL", 60*time.Minute),
			CommunicationSyncInterval: envDuration("COMMUNICATION_SYNC_INTERVAL", 15*time.Minute),
			EventHeartbeat:            envDuration("EVENT_HEARTBEAT", 25*time.Second),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true")
}

// envInt returns -1 for a value that does not parse so Validate rejects it.
func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// envDuration accepts Go duration strings ("90s", "1h") or a bare number of
// minutes. A value that does not parse yields -1 so Validate rejects it.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return -1
	}
	return d
}
