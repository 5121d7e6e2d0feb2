package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultDataURL = "https://raw.githubusercontent.com/jpatokal/openflights/master/data/airports.dat"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Airports AirportsConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           int
	Env            string
	RequestTimeout time.Duration
	ImportTimeout  time.Duration
}

type DatabaseConfig struct {
	Type string // sqlite | postgres
	Name string // sqlite file
	URL  string // postgres DSN
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CacheConfig struct {
	Backend   string // redis | memory
	KeyPrefix string
}

type AirportsConfig struct {
	DataURL string
}

type AuthConfig struct {
	ValidAPIKeys     []string
	AdminAPIKeys     []string
	AdminTokenSecret string
}

type LLMConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
	RatePerSecond  float64
}

// Enabled reports whether an LLM backend is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("IMPORT_TIMEOUT", "2m")

	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DATABASE_NAME", "airports.db")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_BACKEND", "redis")
	v.SetDefault("CACHE_KEY_PREFIX", "airports-api:")

	v.SetDefault("AIRPORTS_DATA_URL", DefaultDataURL)

	v.SetDefault("VALID_API_KEYS", "default-api-key")
	v.SetDefault("ADMIN_API_KEYS", "")
	v.SetDefault("ADMIN_TOKEN_SECRET", "")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("LLM_TIMEOUT", "4s")
	v.SetDefault("LLM_MAX_CONCURRENCY", 4)
	v.SetDefault("LLM_RATE_PER_SEC", 5.0)
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("API_PORT"),
			Env:            v.GetString("APP_ENV"),
			RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
			ImportTimeout:  v.GetDuration("IMPORT_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Type: strings.ToLower(v.GetString("DATABASE_TYPE")),
			Name: v.GetString("DATABASE_NAME"),
			URL:  v.GetString("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(v.GetString("CACHE_BACKEND")),
			KeyPrefix: v.GetString("CACHE_KEY_PREFIX"),
		},
		Airports: AirportsConfig{
			DataURL: v.GetString("AIRPORTS_DATA_URL"),
		},
		Auth: AuthConfig{
			ValidAPIKeys:     splitList(v.GetString("VALID_API_KEYS")),
			AdminAPIKeys:     splitList(v.GetString("ADMIN_API_KEYS")),
			AdminTokenSecret: v.GetString("ADMIN_TOKEN_SECRET"),
		},
		LLM: LLMConfig{
			APIKey:         v.GetString("OPENAI_API_KEY"),
			Model:          v.GetString("OPENAI_MODEL"),
			BaseURL:        v.GetString("OPENAI_BASE_URL"),
			Timeout:        v.GetDuration("LLM_TIMEOUT"),
			MaxConcurrency: v.GetInt("LLM_MAX_CONCURRENCY"),
			RatePerSecond:  v.GetFloat64("LLM_RATE_PER_SEC"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.Server.Port)
	}
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Name == "" {
			return errors.New("DATABASE_NAME is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE %q", c.Database.Type)
	}
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Cache.Backend)
	}
	if len(c.Auth.ValidAPIKeys) == 0 {
		return errors.New("VALID_API_KEYS must contain at least one key")
	}
	if c.Server.RequestTimeout <= 0 || c.Server.ImportTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT and IMPORT_TIMEOUT must be positive")
	}
	if c.LLM.Enabled() {
		// the selector must be able to fall back before the request deadline
		if c.LLM.Timeout <= 0 || c.LLM.Timeout >= c.Server.RequestTimeout {
			return fmt.Errorf("LLM_TIMEOUT (%s) must be positive and shorter than REQUEST_TIMEOUT (%s)",
				c.LLM.Timeout, c.Server.RequestTimeout)
		}
		if c.LLM.MaxConcurrency <= 0 {
			return errors.New("LLM_MAX_CONCURRENCY must be positive")
		}
		if c.LLM.RatePerSecond <= 0 {
			return errors.New("LLM_RATE_PER_SEC must be positive")
		}
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
