package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// MATHTRAIL_SERVER_PORT or MATHTRAIL_AUTH_SESSION_SECRET.
const envPrefix = "MATHTRAIL"

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables, with the environment taking
// precedence. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults mirror the original demo deployment: a local sqlite file
	// and the well-known seed admin.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "mathtrail.db")
	// The secret has no usable default; registering the key lets the
	// environment variable reach Unmarshal, and validation rejects the
	// empty value.
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.session_ttl_minutes", 1440)
	v.SetDefault("auth.pbkdf2_iterations", 150000)
	v.SetDefault("auth.secure_cookies", false)
	v.SetDefault("auth.seed_admin_email", "admin@gmail.com")
	v.SetDefault("auth.seed_admin_password", "admin123")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read error is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
