package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "MUTANT"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Upstream services
	BackendURL   string
	UniProtURL   string
	RCSBURL      string
	AlphaFoldURL string

	// Transport
	HTTPTimeout time.Duration
	MaxRetries  int
	RateLimit   float64
	CacheTTL    time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. MUTANT_* environment variables
// 3. .env and .env.local files
// 4. Config file (--config, or ~/.mutant.yaml, or ./.mutant.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigError{Component: "config", Message: "reading " + configFile, Err: err}
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mutant")
		// A missing default config file is not an error.
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose:      v.GetBool("verbose"),
		Quiet:        v.GetBool("quiet"),
		NoColor:      v.GetBool("no_color"),
		Format:       v.GetString("format"),
		ConfigFile:   v.ConfigFileUsed(),
		BackendURL:   v.GetString("backend_url"),
		UniProtURL:   v.GetString("uniprot_url"),
		RCSBURL:      v.GetString("rcsb_url"),
		AlphaFoldURL: v.GetString("alphafold_url"),
		HTTPTimeout:  v.GetDuration("http_timeout"),
		MaxRetries:   v.GetInt("max_retries"),
		RateLimit:    v.GetFloat64("rate_limit"),
		CacheTTL:     v.GetDuration("cache_ttl"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		LogOutput:    v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", constants.DefaultBackendURL)
	v.SetDefault("uniprot_url", constants.DefaultUniProtURL)
	v.SetDefault("rcsb_url", constants.DefaultRCSBURL)
	v.SetDefault("alphafold_url", constants.DefaultAlphaFoldURL)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("max_retries", constants.MaxRetries)
	v.SetDefault("rate_limit", constants.DefaultRateLimit)
	v.SetDefault("cache_ttl", constants.CacheTTL)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate rejects values the client options would refuse anyway, with the
// config key in the message.
func (c *Config) Validate() error {
	switch {
	case c.HTTPTimeout < 0:
		return &errors.ConfigError{Component: "http_timeout", Message: "cannot be negative"}
	case c.MaxRetries < 0:
		return &errors.ConfigError{Component: "max_retries", Message: "cannot be negative"}
	case c.RateLimit < 0:
		return &errors.ConfigError{Component: "rate_limit", Message: "cannot be negative"}
	case c.CacheTTL < 0:
		return &errors.ConfigError{Component: "cache_ttl", Message: "cannot be negative"}
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars; empty strings
// leave the loaded value in place.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, backend string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if backend != "" {
		c.BackendURL = backend
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a set variable.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
