package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultJudgeURL is the free public Judge0 CE instance. It needs no API key.
const DefaultJudgeURL = "https://ce.judge0.com"

// DefaultNoisePatterns match the Node.js deprecation warning the judge's
// javascript runtime prints on stderr for otherwise clean programs.
var DefaultNoisePatterns = []string{
	`(?m)^\(node:\d+\) \[DEP\d+\] DeprecationWarning:.*(?:\r?\n)?`,
	`(?m)^\(Use ` + "`" + `node --trace-deprecation \.\.\.` + "`" + ` to show where the warning was created\)(?:\r?\n)?`,
}

// Config represents the application configuration
type Config struct {
	// Server configuration
	LogLevel         string        `mapstructure:"log_level"`
	BindAddress      string        `mapstructure:"bind_address"`
	ExecuteTimeout   time.Duration `mapstructure:"execute_timeout"`
	RequestBodyLimit int64         `mapstructure:"request_body_limit"`
	MetricsEnabled   bool          `mapstructure:"metrics_enabled"`

	// Judge connection
	JudgeURL            string        `mapstructure:"judge_url"`
	JudgeAuthToken      string        `mapstructure:"judge_auth_token"`
	JudgeRequestTimeout time.Duration `mapstructure:"judge_request_timeout"`

	// Polling policy
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`

	// Result classification
	StderrNoisePatterns []string `mapstructure:"stderr_noise_patterns"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "INFO")
	v.SetDefault("bind_address", getEnvOrDefault("PORT", "8000"))
	v.SetDefault("execute_timeout", "60s")
	v.SetDefault("request_body_limit", 1<<20)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("judge_url", DefaultJudgeURL)
	v.SetDefault("judge_auth_token", "")
	v.SetDefault("judge_request_timeout", "10s")
	v.SetDefault("poll_interval", "1s")
	v.SetDefault("max_poll_attempts", 30)
	v.SetDefault("stderr_noise_patterns", DefaultNoisePatterns)

	v.SetEnvPrefix("JUDGEPROXY")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/judgeproxy/")
	v.AddConfigPath("$HOME/.judgeproxy/")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate validates the configuration
func validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	u, err := url.Parse(config.JudgeURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("judge_url must be an absolute http(s) URL: %q", config.JudgeURL)
	}

	if config.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if config.MaxPollAttempts <= 0 {
		return fmt.Errorf("max_poll_attempts must be positive")
	}

	if config.JudgeRequestTimeout <= 0 {
		return fmt.Errorf("judge_request_timeout must be positive")
	}

	if config.ExecuteTimeout <= 0 {
		return fmt.Errorf("execute_timeout must be positive")
	}

	if _, err := config.NoisePatterns(); err != nil {
		return err
	}

	return nil
}

// getEnvOrDefault returns a bind address built from the given port variable
func getEnvOrDefault(env, defaultValue string) string {
	if value := os.Getenv(env); value != "" {
		return "0.0.0.0:" + value
	}
	return "0.0.0.0:" + defaultValue
}

// GetBindAddress returns the complete bind address
func (c *Config) GetBindAddress() string {
	if c.BindAddress == "" {
		return "0.0.0.0:8000"
	}
	return c.BindAddress
}

// GetLogLevel returns the parsed log level
func (c *Config) GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// PollCeiling is the hard wall-clock bound on the polling phase of one
// execution: the full attempt budget plus one judge round trip.
func (c *Config) PollCeiling() time.Duration {
	return time.Duration(c.MaxPollAttempts)*c.PollInterval + c.JudgeRequestTimeout
}

// NoisePatterns compiles the configured stderr noise patterns
func (c *Config) NoisePatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.StderrNoisePatterns))
	for _, raw := range c.StderrNoisePatterns {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stderr noise pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}
