package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/helpdesk-inc/helpdesk/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig     `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig       `mapstructure:"auth"`
	Redis       sharedConfig.RedisConfig      `mapstructure:"redis"`
	Storage     sharedConfig.StorageConfig    `mapstructure:"storage"`
	Broadcast   sharedConfig.BroadcastConfig  `mapstructure:"broadcast"`
	Attachments sharedConfig.AttachmentConfig `mapstructure:"attachments"`
	RateLimit   sharedConfig.RateLimitConfig  `mapstructure:"rate_limit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml, then HELPDESK_* environment variables.
// A .env file in the working directory is loaded into the environment first when present.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "helpdesk_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.issuer", "helpdesk")
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "minioadmin")
	v.SetDefault("storage.secret_key", "minioadmin")
	v.SetDefault("storage.bucket", "helpdesk")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("broadcast.app_key", "helpdesk-key")
	v.SetDefault("broadcast.app_secret", "change-me-in-production")
	v.SetDefault("broadcast.channel", "helpdesk:broadcast")
	v.SetDefault("broadcast.publish_timeout", 5*time.Second)

	v.SetDefault("attachments.max_files", 10)
	v.SetDefault("attachments.max_urls", 5)
	v.SetDefault("attachments.max_file_size_kib", 20480)

	v.SetDefault("rate_limit.messages_per_minute", 60)
	v.SetDefault("rate_limit.channel_auth_per_minute", 120)
}
