package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	LogLevel  string `mapstructure:"log_level"`
	SentryDSN string `mapstructure:"sentry_dsn"`
	CORS      struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`

	// TempDir is the root under which each request creates its scratch
	// directory. Empty means the system temp directory.
	TempDir string `mapstructure:"temp_dir"`

	Tools struct {
		FFmpeg    string `mapstructure:"ffmpeg"`
		FFsubsync string `mapstructure:"ffsubsync"`
		Alass     string `mapstructure:"alass"`
	} `mapstructure:"tools"`

	Sync struct {
		AudioDuration    string  `mapstructure:"audio_duration"`     // Go duration string, media extracted per request
		MaxOffsetSeconds int     `mapstructure:"max_offset_seconds"` // Widest offset the primary aligner searches
		FetchTimeout     string  `mapstructure:"fetch_timeout"`      // Go duration strings; the three stage budgets
		PrimaryTimeout   string  `mapstructure:"primary_timeout"`
		FallbackTimeout  string  `mapstructure:"fallback_timeout"`
		MinConfidence    float64 `mapstructure:"min_confidence"`          // Acceptance threshold for the primary aligner
		FallbackMinConf  float64 `mapstructure:"fallback_min_confidence"` // Lower bar for the coarser fallback
		MaxSamples       int     `mapstructure:"max_samples"`             // Offset samples considered by the reducer
	} `mapstructure:"sync"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	globalConfig = config
	logger.Info().Str("level", level.String()).Msg("Configuration loaded")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.address", "")
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("sentry_dsn", "")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("temp_dir", "")
	viper.SetDefault("tools.ffmpeg", "ffmpeg")
	viper.SetDefault("tools.ffsubsync", "ffsubsync")
	viper.SetDefault("tools.alass", "alass")
	viper.SetDefault("sync.audio_duration", "600s")
	viper.SetDefault("sync.max_offset_seconds", 60)
	viper.SetDefault("sync.fetch_timeout", "90s")
	viper.SetDefault("sync.primary_timeout", "120s")
	viper.SetDefault("sync.fallback_timeout", "60s")
	viper.SetDefault("sync.min_confidence", 0.5)
	viper.SetDefault("sync.fallback_min_confidence", 0.3)
	viper.SetDefault("sync.max_samples", 5)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}

// durationOrDefault parses a Go duration string, falling back when the value
// is missing or malformed.
func durationOrDefault(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn().Str("duration", value).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

// AudioDuration returns how much media each request extracts for analysis.
func (c *Config) AudioDuration() time.Duration {
	return durationOrDefault(c.Sync.AudioDuration, 600*time.Second)
}

// FetchTimeout returns the hard budget of the audio extraction stage.
func (c *Config) FetchTimeout() time.Duration {
	return durationOrDefault(c.Sync.FetchTimeout, 90*time.Second)
}

// PrimaryTimeout returns the hard budget of the primary aligner stage.
func (c *Config) PrimaryTimeout() time.Duration {
	return durationOrDefault(c.Sync.PrimaryTimeout, 120*time.Second)
}

// FallbackTimeout returns the hard budget of the fallback aligner stage.
func (c *Config) FallbackTimeout() time.Duration {
	return durationOrDefault(c.Sync.FallbackTimeout, 60*time.Second)
}

// ScratchRoot returns the directory under which request scratch directories
// are created.
func (c *Config) ScratchRoot() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return os.TempDir()
}
