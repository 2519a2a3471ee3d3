package util

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AllowedOrigins     []string      `mapstructure:"ALLOWED_ORIGINS"`
	HTTPServerAddress  string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	WSBaseURL          string        `mapstructure:"WS_BASE_URL"`
	TokenSecretKey     string        `mapstructure:"TOKEN_SECRET_KEY"`
	TokenDuration      time.Duration `mapstructure:"TOKEN_DURATION"`
	SimulationInterval time.Duration `mapstructure:"SIMULATION_INTERVAL"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	// Set defaults for non-sensitive config
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:3002")
	viper.SetDefault("WS_BASE_URL", "ws://localhost:3002")
	viper.SetDefault("TOKEN_DURATION", "24h")
	viper.SetDefault("SIMULATION_INTERVAL", "15s")

	// Prefer environment variables over config file. AutomaticEnv alone does
	// not surface env values through Unmarshal for keys without a default, so
	// every key is bound explicitly.
	viper.AutomaticEnv()
	for _, key := range []string{
		"ALLOWED_ORIGINS",
		"HTTP_SERVER_ADDRESS",
		"WS_BASE_URL",
		"TOKEN_SECRET_KEY",
		"TOKEN_DURATION",
		"SIMULATION_INTERVAL",
	} {
		if err = viper.BindEnv(key); err != nil {
			return
		}
	}

	// Load config file when present; env-only setups are fine without one
	viper.SetConfigFile(path)
	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return
		}
		err = nil
	}

	// Unmarshal config into struct
	err = viper.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.TokenSecretKey == "" {
		return fmt.Errorf("TOKEN_SECRET_KEY is required")
	}
	if config.WSBaseURL == "" {
		return fmt.Errorf("WS_BASE_URL is required")
	}
	return nil
}
