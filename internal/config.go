package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Chat          ChatConfig          `mapstructure:"chat"`
	Mailer        MailerConfig        `mapstructure:"mailer"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
	BCryptCost    int           `mapstructure:"bcrypt_cost"`
}

// ChatConfig bounds the realtime messaging subsystem.
type ChatConfig struct {
	HistoryLimit     int           `mapstructure:"history_limit"`
	MaxMessageLength int           `mapstructure:"max_message_length"`
	SendBufferSize   int           `mapstructure:"send_buffer_size"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	PongTimeout      time.Duration `mapstructure:"pong_timeout"`
	AuthTimeout      time.Duration `mapstructure:"auth_timeout"`
}

type MailerConfig struct {
	From     string `mapstructure:"from"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Enabled  bool   `mapstructure:"enabled"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- DEFAULTS -----------------

const (
	DefaultTokenDuration    = 24 * time.Hour
	DefaultHistoryLimit     = 50
	DefaultMaxMessageLength = 1000
	DefaultSendBufferSize   = 256
	DefaultAuthTimeout      = 5 * time.Second
)

// ApplyDefaults fills zero values that have sensible production defaults.
func (c *Config) ApplyDefaults() {
	if c.Security.TokenDuration == 0 {
		c.Security.TokenDuration = DefaultTokenDuration
	}
	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = DefaultHistoryLimit
	}
	if c.Chat.MaxMessageLength == 0 {
		c.Chat.MaxMessageLength = DefaultMaxMessageLength
	}
	if c.Chat.SendBufferSize == 0 {
		c.Chat.SendBufferSize = DefaultSendBufferSize
	}
	if c.Chat.AuthTimeout == 0 {
		c.Chat.AuthTimeout = DefaultAuthTimeout
	}
	if c.Chat.WriteTimeout == 0 {
		c.Chat.WriteTimeout = 10 * time.Second
	}
	if c.Chat.PongTimeout == 0 {
		c.Chat.PongTimeout = 60 * time.Second
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the config from environment variables only,
// used for Docker deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", ""),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_SOURCE", ""),
		},
		Security: SecurityConfig{
			JWTSecret:     getEnv("SECURITY_JWT_SECRET", ""),
			TokenDuration: getEnvAsDuration("SECURITY_TOKEN_DURATION", DefaultTokenDuration),
			BCryptCost:    getEnvAsInt("SECURITY_BCRYPT_COST", 12),
		},
		Mailer: MailerConfig{
			From:     getEnv("MAILER_FROM", "noreply@taskmanagement.local"),
			SMTPHost: getEnv("MAILER_SMTP_HOST", ""),
			SMTPPort: getEnvAsInt("MAILER_SMTP_PORT", 587),
			Enabled:  getEnv("MAILER_ENABLED", "false") == "true",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Chat.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("chat config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if c.TokenDuration < time.Minute {
		return errors.New("token_duration must be at least 1 minute")
	}
	if c.BCryptCost != 0 && (c.BCryptCost < 10 || c.BCryptCost > 15) {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *ChatConfig) Validate() error {
	if c.HistoryLimit < 0 {
		return errors.New("history_limit must not be negative")
	}
	if c.MaxMessageLength < 0 {
		return errors.New("max_message_length must not be negative")
	}
	return nil
}
