package configs

import (
	"fmt"
	"time"

	"github.com/greenroomhq/greenroom/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Provider    ProviderConfig    `koanf:"provider"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	Audit       AuditConfig       `koanf:"audit"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type ProviderConfig struct {
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type RoomsConfig struct {
	DefaultTTL      time.Duration `koanf:"default_ttl"`
	MaxParticipants int           `koanf:"max_participants"`
	// ReapInterval of zero disables the background reaper; expiry is
	// enforced lazily either way.
	ReapInterval time.Duration `koanf:"reap_interval"`
}

type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// Only return error if file was explicitly provided but failed to load
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Apply defaults and environment variable overrides
	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Meeting provider defaults
	setDefault(k, "provider.base_url", "https://api.daily.co/v1")
	setDefault(k, "provider.request_timeout", 10*time.Second)

	// Room defaults
	setDefault(k, "rooms.default_ttl", time.Hour)
	setDefault(k, "rooms.max_participants", 20)
	setDefault(k, "rooms.reap_interval", 5*time.Minute)

	// Audit defaults
	setDefault(k, "audit.enabled", false)
}

func applyEnvOverrides(k *koanf.Koanf) {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}

	// Provider config from env
	if baseURL := env.GetString("PROVIDER_BASE_URL", ""); baseURL != "" {
		k.Set("provider.base_url", baseURL)
	}
	if apiKey := env.GetString("PROVIDER_API_KEY", ""); apiKey != "" {
		k.Set("provider.api_key", apiKey)
	}
	if timeout := env.GetInt("PROVIDER_REQUEST_TIMEOUT_SECONDS", 0); timeout > 0 {
		k.Set("provider.request_timeout", time.Duration(timeout)*time.Second)
	}

	// Room config from env
	if ttl := env.GetInt("ROOM_DEFAULT_TTL_SECONDS", 0); ttl > 0 {
		k.Set("rooms.default_ttl", time.Duration(ttl)*time.Second)
	}
	if maxParticipants := env.GetInt("ROOM_MAX_PARTICIPANTS", 0); maxParticipants > 0 {
		k.Set("rooms.max_participants", maxParticipants)
	}
	if reap := env.GetInt("ROOM_REAP_INTERVAL_SECONDS", -1); reap >= 0 {
		k.Set("rooms.reap_interval", time.Duration(reap)*time.Second)
	}

	// Audit config from env
	if enabled := env.GetBool("AUDIT_ENABLED", false); enabled {
		k.Set("audit.enabled", true)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
