package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	// MaxLoginAttempts is the number of failed logins allowed per window.
	MaxLoginAttempts          int `mapstructure:"max_login_attempts"           validate:"gte=1"`
	LoginAttemptWindowMinutes int `mapstructure:"login_attempt_window_minutes" validate:"gte=1"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// LoginAttemptWindow returns the login throttling window as a duration.
func (c AuthConfig) LoginAttemptWindow() time.Duration {
	return time.Duration(c.LoginAttemptWindowMinutes) * time.Minute
}

// RedisConfig configures the Redis connection used for login throttling.
// An empty Addr disables throttling.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"     validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       validate:"gte=0"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TracingConfig configures OpenTelemetry export. An empty Endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"     validate:"omitempty,hostname_port"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}
