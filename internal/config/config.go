// Package config manages environment variables.
//
// It reads variables from the `.env` file, an optional YAML file and the
// process environment, loads them into structured Go types (struct), and
// validates that required values are present so they can be reused across
// the application runtime.
//
// Responsibilities:
//   - Provide sane defaults for every block (so a bare `go run` works locally).
//   - Overlay an optional YAML file, then environment variables.
//   - Map everything into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: triggers godotenv's autoload feature.
	// If a `.env` file exists, it gets loaded into the process env
	// before the env provider below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from every environment variable before it is mapped.
	EnvPrefix = "WATCHLIST_"

	// ConfigFileEnv names the variable that points at an optional YAML file.
	ConfigFileEnv = "WATCHLIST_CONFIG_FILE"

	// ServiceName is forced onto the observability block.
	ServiceName = "movie-watchlist"
)

/*
	Key mapping:
	- Env vars are read using the WATCHLIST_ prefix.
	- Keys are lowercased and the prefix removed.
	- A double underscore separates nesting levels, single underscores stay
	  part of the key:
	    WATCHLIST_SERVER__PORT               -> server.port
	    WATCHLIST_DATABASE__OPERATION_TIMEOUT -> database.operation_timeout
*/

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf should map values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary             `koanf:"primary" validate:"required"`
	Server        ServerConfig        `koanf:"server" validate:"required"`
	Database      DatabaseConfig      `koanf:"database" validate:"required"`
	Redis         RedisConfig         `koanf:"redis"`
	RateLimit     RateLimitConfig     `koanf:"rate_limit"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production test"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// StaticDir is the directory holding index.html and the API docs.
	StaticDir string `koanf:"static_dir" validate:"required"`
}

// DatabaseConfig contains MongoDB connection parameters.
type DatabaseConfig struct {
	URI        string `koanf:"uri" validate:"required"`
	Name       string `koanf:"name" validate:"required"`
	Collection string `koanf:"collection" validate:"required"`

	// ConnectTimeout bounds the initial connect + ping at start-up.
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=1s"`

	// OperationTimeout bounds every single store call made by a request.
	OperationTimeout time.Duration `koanf:"operation_timeout" validate:"min=100ms"`
}

// RedisConfig contains Redis connection details.
// An empty Address means Redis is not used.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Enabled bool `koanf:"enabled"`

	// RequestsPerSecond is the sustained rate for the in-memory limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`

	// Burst is the number of requests allowed above the sustained rate.
	// With Redis it is the request budget of a single Window.
	Burst int `koanf:"burst" validate:"min=1"`

	// Window is the fixed window length used by the Redis-backed limiter.
	Window time.Duration `koanf:"window" validate:"min=1s"`
}

// Default returns the configuration used before any file or env var is applied.
//
// The database values mirror what the watchlist app has always shipped with:
// a local MongoDB and the movie_watchlist database on port 5000.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "5000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			StaticDir:          "static",
		},
		Database: DatabaseConfig{
			URI:              "mongodb://localhost:27017/",
			Name:             "movie_watchlist",
			Collection:       "movies",
			ConnectTimeout:   10 * time.Second,
			OperationTimeout: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 20,
			Burst:             40,
			Window:            time.Minute,
		},
		Observability: *DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from defaults, an optional YAML file and
// environment variables, then validates it.
//
// Behavior summary:
//   - Start from Default()
//   - If WATCHLIST_CONFIG_FILE is set, overlay that YAML file
//   - Overlay env vars with prefix WATCHLIST_
//   - Unmarshal into Config and validate struct tags
//   - Force observability service name + environment
//   - Run ObservabilityConfig.Validate for rules tags can't express
func LoadConfig() (*Config, error) {
	return load(os.Getenv(ConfigFileEnv))
}

func load(path string) (*Config, error) {
	// The "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// Env values for slices arrive as one comma separated string.
	mainConfig.Server.CORSAllowedOrigins = splitList(mainConfig.Server.CORSAllowedOrigins)

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Force service name and environment regardless of what the user set,
	// so logs and traces always agree with primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
