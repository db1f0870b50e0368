package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "TASKS"

// Default values applied before files and environment are read.
const (
	DefaultPort                   = 5000
	DefaultLogLevel               = "info"
	DefaultPortRetryAttempts      = 10
	DefaultShutdownTimeoutSeconds = 10
	DefaultFrontendURL            = "http://localhost:3001"
	DefaultTokenLifetimeMinutes   = 24 * 60
	DefaultBcryptCost             = 10
)

// envBindings lists each config key with the variables that can set it, in
// precedence order. The unprefixed names are the ones earlier deployments used.
var envBindings = []struct {
	key     string
	envVars []string
}{
	{"server.port", []string{"TASKS_SERVER_PORT", "PORT"}},
	{"server.log_level", []string{"TASKS_SERVER_LOG_LEVEL"}},
	{"server.port_retry_attempts", []string{"TASKS_SERVER_PORT_RETRY_ATTEMPTS"}},
	{"server.shutdown_timeout_seconds", []string{"TASKS_SERVER_SHUTDOWN_TIMEOUT_SECONDS"}},
	{"server.frontend_url", []string{"TASKS_SERVER_FRONTEND_URL", "FRONTEND_URL"}},
	{"database.url", []string{"TASKS_DATABASE_URL", "DATABASE_URL"}},
	{"auth.jwt_secret", []string{"TASKS_AUTH_JWT_SECRET", "JWT_SECRET"}},
	{"auth.token_lifetime_minutes", []string{"TASKS_AUTH_TOKEN_LIFETIME_MINUTES"}},
	{"auth.bcrypt_cost", []string{"TASKS_AUTH_BCRYPT_COST"}},
}

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables, which take precedence.
// Returns a validated Config or an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshalAndValidate(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.port_retry_attempts", DefaultPortRetryAttempts)
	v.SetDefault("server.shutdown_timeout_seconds", DefaultShutdownTimeoutSeconds)
	v.SetDefault("server.frontend_url", DefaultFrontendURL)
	v.SetDefault("auth.token_lifetime_minutes", DefaultTokenLifetimeMinutes)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	for _, b := range envBindings {
		args := append([]string{b.key}, b.envVars...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", b.key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
