package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds the Tupi product API configuration
type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	User      string        `mapstructure:"user"`
	Password  string        `mapstructure:"password"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MessagingConfig holds the Chaindesk conversations API configuration
type MessagingConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	AgentID           string        `mapstructure:"agent_id"`
	Channel           string        `mapstructure:"channel"`
	Take              int           `mapstructure:"take"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`     // 0 means unbounded
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 means unlimited
	Timeout           time.Duration `mapstructure:"timeout"`
}

// QueueConfig holds the ThinkComm bot integration configuration
type QueueConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Source  string        `mapstructure:"source"`
	Action  string        `mapstructure:"action"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tupi-proxy/")

	// TUPIPROXY_CATALOG_USER -> catalog.user
	v.SetEnvPrefix("TUPIPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Secrets default to empty so
// that AutomaticEnv can resolve them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("catalog.base_url", "https://tupi.com.py/api-legacy/v1")
	v.SetDefault("catalog.user", "")
	v.SetDefault("catalog.password", "")
	v.SetDefault("catalog.user_agent", "Neural Genius")
	v.SetDefault("catalog.timeout", "30s")

	v.SetDefault("messaging.base_url", "https://app.chaindesk.ai")
	v.SetDefault("messaging.api_key", "")
	v.SetDefault("messaging.agent_id", "cm2xec08908cc4s7x96a94oti")
	v.SetDefault("messaging.channel", "api")
	v.SetDefault("messaging.take", 10)
	v.SetDefault("messaging.max_concurrency", 0)
	v.SetDefault("messaging.requests_per_second", 0)
	v.SetDefault("messaging.timeout", "30s")

	v.SetDefault("queue.url", "https://tupi.whatsapp.net.py/thinkcomm-x/integrations/bot/")
	v.SetDefault("queue.token", "")
	v.SetDefault("queue.source", "595974321000")
	v.SetDefault("queue.action", "chat_to_queue")
	v.SetDefault("queue.timeout", "30s")

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.User == "" || config.Catalog.Password == "" {
		return fmt.Errorf("catalog credentials are required (set TUPIPROXY_CATALOG_USER and TUPIPROXY_CATALOG_PASSWORD)")
	}

	if config.Messaging.APIKey == "" {
		return fmt.Errorf("messaging API key is required (set TUPIPROXY_MESSAGING_API_KEY)")
	}

	if config.Queue.Token == "" {
		return fmt.Errorf("queue token is required (set TUPIPROXY_QUEUE_TOKEN)")
	}

	if config.Messaging.Take <= 0 {
		return fmt.Errorf("messaging take must be positive, got: %d", config.Messaging.Take)
	}

	if config.Messaging.MaxConcurrency < 0 {
		return fmt.Errorf("messaging max_concurrency must not be negative, got: %d", config.Messaging.MaxConcurrency)
	}

	if config.Messaging.RequestsPerSecond < 0 {
		return fmt.Errorf("messaging requests_per_second must not be negative, got: %v", config.Messaging.RequestsPerSecond)
	}

	return nil
}
