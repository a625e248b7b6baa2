// Package config loads the client configuration from the environment,
// an optional .env file and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultServerAddress  = "localhost:8080"
	defaultLogLevel       = "info"
	defaultEnv            = EnvLocal
	defaultConfigDir      = ".passkeeper"
	defaultSearchDebounce = 300
)

type Config struct {
	Env            string `mapstructure:"app_env"`
	ServerAddress  string `mapstructure:"server_address"`
	LogLevel       string `mapstructure:"log_level"`
	ConfigDir      string `mapstructure:"config_dir"`
	HistoryPath    string `mapstructure:"history_path"`
	EnableTLS      bool   `mapstructure:"enable_tls"`
	SearchDebounce int    `mapstructure:"search_debounce_ms"`
}

// Load reads the configuration. Values come from the environment (and a
// .env file when present), falling back to defaults. The config
// directory is created if missing.
func Load() (*Config, error) {
	// A .env next to the binary or one directory up is picked up when
	// present; absence is not an error.
	for _, envPath := range []string{".env", "../.env"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
			}
			break
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SEARCH_DEBOUNCE_MS", defaultSearchDebounce)
	viper.SetDefault("ENABLE_TLS", true)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	historyPath := viper.GetString("HISTORY_PATH")
	if historyPath == "" {
		historyPath = filepath.Join(configDir, "history.db")
	}

	cfg := &Config{
		Env:            viper.GetString("APP_ENV"),
		ServerAddress:  viper.GetString("SERVER_ADDRESS"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		HistoryPath:    historyPath,
		EnableTLS:      viper.GetBool("ENABLE_TLS"),
		SearchDebounce: viper.GetInt("SEARCH_DEBOUNCE_MS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative")
	}
	return nil
}

// IsProd reports whether the client runs against prod.
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsLocal reports whether the client runs in the local environment.
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
