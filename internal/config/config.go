package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects and configures the account store backend.
// The sqlite driver is the local-persistence variant (a file path or
// ":memory:"); the postgres driver is the relational variant (a
// connection URL).
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	// SessionSecret signs session tokens. Must be at least 32 characters.
	SessionSecret string `mapstructure:"session_secret" validate:"required,min=32"`

	// SessionTTLMinutes bounds how long an issued session token validates.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" validate:"required,gt=0"`

	// PBKDF2Iterations is the iteration count for newly derived
	// credentials. Stored per credential, so it can be raised later
	// without invalidating existing accounts.
	PBKDF2Iterations int `mapstructure:"pbkdf2_iterations" validate:"required,gte=10000"`

	// SecureCookies marks session cookies Secure; disable for local HTTP.
	SecureCookies bool `mapstructure:"secure_cookies"`

	// Seed admin created when the store is empty.
	SeedAdminEmail    string `mapstructure:"seed_admin_email"    validate:"required,email"`
	SeedAdminPassword string `mapstructure:"seed_admin_password" validate:"required"`
}
