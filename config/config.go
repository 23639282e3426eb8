package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main application configuration struct.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DataGov DataGovConfig `mapstructure:"datagov"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DataGovConfig points at the data.gov.in open-data API.
type DataGovConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	FetchLimit int    `mapstructure:"fetch_limit"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegistryFile is the optional YAML file overriding the built-in dataset
// registry and trusted-source catalog. Empty means built-ins only.
func (c *Config) RegistryFile() string {
	return viper.GetString("registry.file")
}

// Load reads configuration from an optional config.yaml, a .env file, and
// the environment. Environment variables win, e.g. DATAGOV_API_KEY overrides
// datagov.api_key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	applyDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("datagov.endpoint", "https://api.data.gov.in/resource")
	viper.SetDefault("datagov.fetch_limit", 50)
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.DataGov.Endpoint == "" {
		return fmt.Errorf("datagov.endpoint must be set")
	}
	if cfg.DataGov.APIKey == "" {
		return fmt.Errorf("datagov.api_key must be set (DATAGOV_API_KEY)")
	}
	return nil
}
