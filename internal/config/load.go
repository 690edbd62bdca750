package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads,
// e.g. ACCOUNT_DATABASE_URL for database.url.
const EnvPrefix = "ACCOUNT"

// Options controls where Load looks for configuration sources.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml in the
	// working directory is used if present.
	ConfigFile string
	// DotEnvFile is loaded into the process environment before viper reads it.
	// Missing files are ignored. Defaults to ".env".
	DotEnvFile string
}

// Load reads configuration with the default Options.
func Load() (*Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions reads configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence, then validates it.
func LoadWithOptions(opts Options) (*Config, error) {
	dotEnv := opts.DotEnvFile
	if dotEnv == "" {
		dotEnv = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnv, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.max_login_attempts", 5)
	v.SetDefault("auth.login_attempt_window_minutes", 15)

	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("tracing.service_name", "account-api")
}

// bindEnvs registers keys that have no default so AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"redis.addr",
		"redis.password",
		"tracing.endpoint",
	} {
		_ = v.BindEnv(key)
	}
}
