package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
)

// Placeholder sources for measurements the caller did not supply.
const (
	PlaceholderStub   = "stub"
	PlaceholderJitter = "jitter"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	RateLimit RateLimitConfig `yaml:"ratelimit" mapstructure:"ratelimit"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
}

type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`
	Port           int           `yaml:"port" mapstructure:"port"`
	Mode           string        `yaml:"mode" mapstructure:"mode"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging. File is optional; when set, logs are also
// written to a rotating file.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

type StorageConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	DataDir       string        `yaml:"data_dir" mapstructure:"data_dir"`
	RetentionDays int           `yaml:"retention_days" mapstructure:"retention_days"`
	PurgeInterval time.Duration `yaml:"purge_interval" mapstructure:"purge_interval"`
}

// RateLimitConfig configures the analyze endpoint limiter. An empty
// RedisAddr keeps the limiter in process.
type RateLimitConfig struct {
	RedisAddr       string  `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword   string  `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB         int     `yaml:"redis_db" mapstructure:"redis_db"`
	IPLimitPerMin   int     `yaml:"ip_limit_per_min" mapstructure:"ip_limit_per_min"`
	BurstMultiplier float64 `yaml:"burst_multiplier" mapstructure:"burst_multiplier"`
}

type CacheConfig struct {
	Size int           `yaml:"size" mapstructure:"size"`
	TTL  time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type ScoringConfig struct {
	Weights     analysis.Weights    `yaml:"weights" mapstructure:"weights"`
	Thresholds  analysis.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	NormsFile   string              `yaml:"norms_file" mapstructure:"norms_file"`
	Placeholder string              `yaml:"placeholder" mapstructure:"placeholder"`
	JitterSeed  int64               `yaml:"jitter_seed" mapstructure:"jitter_seed"`
}

func setDefaults(v *viper.Viper) {
	w := analysis.DefaultWeights()
	t := analysis.DefaultThresholds()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.max_body_bytes", 12<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.retention_days", 90)
	v.SetDefault("storage.purge_interval", time.Hour)

	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.redis_password", "")
	v.SetDefault("ratelimit.redis_db", 0)
	v.SetDefault("ratelimit.ip_limit_per_min", 30)
	v.SetDefault("ratelimit.burst_multiplier", 1.5)

	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("scoring.weights.memory", w.Memory)
	v.SetDefault("scoring.weights.speech", w.Speech)
	v.SetDefault("scoring.weights.executive", w.Executive)
	v.SetDefault("scoring.weights.reaction", w.Reaction)
	v.SetDefault("scoring.weights.motor", w.Motor)
	v.SetDefault("scoring.thresholds.mild", t.Mild)
	v.SetDefault("scoring.thresholds.moderate", t.Moderate)
	v.SetDefault("scoring.thresholds.high", t.High)
	v.SetDefault("scoring.norms_file", "")
	v.SetDefault("scoring.placeholder", PlaceholderStub)
	v.SetDefault("scoring.jitter_seed", 1)
}

// Load reads configuration from an optional YAML file and the environment.
// With an empty path, ./config.yaml is used when present. Environment
// variables use the CRI_ prefix, e.g. CRI_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. Scoring weights and the norm file are
// validated by building the scoring settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return eris.Errorf("config: server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.RequestTimeout <= 0 {
		return eris.New("config: server.request_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return eris.New("config: server.max_body_bytes must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return eris.Wrap(err, "config: log.level")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return eris.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}

	if c.Storage.RetentionDays < 0 {
		return eris.New("config: storage.retention_days must not be negative")
	}
	if c.RateLimit.IPLimitPerMin <= 0 {
		return eris.New("config: ratelimit.ip_limit_per_min must be positive")
	}
	if c.RateLimit.BurstMultiplier < 1 {
		return eris.New("config: ratelimit.burst_multiplier must be at least 1")
	}
	if c.Cache.Size <= 0 {
		return eris.New("config: cache.size must be positive")
	}

	if c.Scoring.Placeholder != PlaceholderStub && c.Scoring.Placeholder != PlaceholderJitter {
		return eris.Errorf("config: scoring.placeholder must be %s or %s, got %q", PlaceholderStub, PlaceholderJitter, c.Scoring.Placeholder)
	}
	if _, err := c.ScoringSettings(); err != nil {
		return err
	}
	return nil
}

// ScoringSettings builds the immutable analysis settings, loading the norm
// file when one is configured.
func (c *Config) ScoringSettings() (analysis.Settings, error) {
	norms, err := analysis.NewNormStore(c.Scoring.NormsFile).Load()
	if err != nil {
		return analysis.Settings{}, eris.Wrap(err, "config: scoring.norms_file")
	}

	settings := analysis.DefaultSettings()
	settings.Weights = c.Scoring.Weights
	settings.Thresholds = c.Scoring.Thresholds
	settings.Norms = norms
	if err := settings.Validate(); err != nil {
		return analysis.Settings{}, eris.Wrap(err, "config: scoring")
	}
	return settings, nil
}

// FeatureSource returns the configured measurement source. Caller-supplied
// values always take precedence over the placeholder.
func (c *Config) FeatureSource() analysis.FeatureSource {
	if c.Scoring.Placeholder == PlaceholderJitter {
		return analysis.NewStructuredSource(analysis.NewJitterSource(c.Scoring.JitterSeed))
	}
	return analysis.NewStructuredSource(analysis.StubSource{})
}
