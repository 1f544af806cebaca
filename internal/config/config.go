package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// Archive endpoint of the Environment and Climate Change Canada
	// historical radar viewer. Owned by the remote service, override via
	// config file or RADARFETCH_ARCHIVE_URL when it moves.
	defaultBaseURL = "https://climate.weather.gc.ca/radar/image_e.html"

	defaultTimeout            = 30 * time.Second
	defaultRetries            = 2
	defaultRetryInterval      = 500 * time.Millisecond
	defaultRetryMaxInterval   = 5 * time.Second
	defaultBreakerMaxRequests = 3
	defaultBreakerInterval    = time.Minute
	defaultBreakerTimeout     = 2 * time.Minute
	defaultWorkers            = 1

	envArchiveURL = "RADARFETCH_ARCHIVE_URL"
	envLogLevel   = "RADARFETCH_LOG_LEVEL"
)

// Duration wraps time.Duration so config files can say "30s" instead of
// nanosecond counts.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	*d = Duration(v)

	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type ArchiveConfig struct {
	BaseURL            string   `yaml:"base_url"`
	Timeout            Duration `yaml:"timeout"`
	Retries            uint64   `yaml:"retries"`
	RetryInterval      Duration `yaml:"retry_interval"`
	RetryMaxInterval   Duration `yaml:"retry_max_interval"`
	BreakerMaxRequests uint32   `yaml:"breaker_max_requests"`
	BreakerInterval    Duration `yaml:"breaker_interval"`
	BreakerTimeout     Duration `yaml:"breaker_timeout"`
}

type FetcherConfig struct {
	Workers      int  `yaml:"workers"`
	SkipExisting bool `yaml:"skip_existing"`
}

// CatalogConfig extends the built-in site and image-type catalogs with codes
// the archive accepts but this tool does not know about yet.
type CatalogConfig struct {
	Sites        []string `yaml:"sites"`
	ImageTypes   []string `yaml:"image_types"`
	AllowUnknown bool     `yaml:"allow_unknown"`
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Archive  ArchiveConfig `yaml:"archive"`
	Fetcher  FetcherConfig `yaml:"fetcher"`
	Catalog  CatalogConfig `yaml:"catalog"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = LogLevelInfo
	c.Archive = ArchiveConfig{
		BaseURL:            defaultBaseURL,
		Timeout:            Duration(defaultTimeout),
		Retries:            defaultRetries,
		RetryInterval:      Duration(defaultRetryInterval),
		RetryMaxInterval:   Duration(defaultRetryMaxInterval),
		BreakerMaxRequests: defaultBreakerMaxRequests,
		BreakerInterval:    Duration(defaultBreakerInterval),
		BreakerTimeout:     Duration(defaultBreakerTimeout),
	}
	c.Fetcher = FetcherConfig{
		Workers:      defaultWorkers,
		SkipExisting: true,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order. An empty path means defaults only.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}

		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal config file: %w", err)
		}
	}

	// .env is optional, absence is not an error.
	_ = godotenv.Load()

	if url := os.Getenv(envArchiveURL); url != "" {
		cfg.Archive.BaseURL = url
	}

	if level := os.Getenv(envLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	if c.Archive.BaseURL == "" {
		return fmt.Errorf("archive base url must not be empty")
	}

	if c.Fetcher.Workers < 1 {
		return fmt.Errorf("fetcher workers must be at least 1")
	}

	return nil
}
