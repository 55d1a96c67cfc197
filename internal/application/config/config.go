package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout    = 30
	defaultRetryCount = 3
	defaultLogFile    = "serv00.log"
)

type Account struct {
	PanelURL string `yaml:"panel_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	OnBanned string `yaml:"on_banned"`
}

type Settings struct {
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
	// RetryCount is the number of retries after the first attempt.
	// nil means the default; 0 disables retries.
	RetryCount *int   `yaml:"retry_count"`
	LogFile    string `yaml:"log_file"`
	// MetricsFile, when set, receives the run's metrics in
	// node_exporter textfile format.
	MetricsFile string `yaml:"metrics_file"`
}

// Markers overrides the built-in panel marker strings. Empty lists keep
// the defaults.
type Markers struct {
	Banned    []string `yaml:"banned"`
	Success   []string `yaml:"success"`
	LoginPage []string `yaml:"login_page"`
}

type Config struct {
	Accounts []Account `yaml:"accounts"`
	Settings Settings  `yaml:"settings"`
	Markers  Markers   `yaml:"markers"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Settings.Timeout == 0 {
		cfg.Settings.Timeout = defaultTimeout
	}
	if cfg.Settings.RetryCount == nil {
		rc := defaultRetryCount
		cfg.Settings.RetryCount = &rc
	}
	if cfg.Settings.LogFile == "" {
		cfg.Settings.LogFile = defaultLogFile
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	var errMsg []string

	if len(cfg.Accounts) == 0 {
		errMsg = append(errMsg, `no accounts defined`)
	}
	for i, acc := range cfg.Accounts {
		if acc.PanelURL == "" {
			errMsg = append(errMsg, fmt.Sprintf(`account %d: panel_url is empty`, i))
		}
		if acc.Username == "" {
			errMsg = append(errMsg, fmt.Sprintf(`account %d: username is empty`, i))
		}
		if acc.Password == "" {
			errMsg = append(errMsg, fmt.Sprintf(`account %d: password is empty`, i))
		}
	}

	if cfg.Settings.Timeout < 1 {
		errMsg = append(errMsg, `settings.timeout must be positive`)
	}
	if *cfg.Settings.RetryCount < 0 {
		errMsg = append(errMsg, `settings.retry_count must not be negative`)
	}

	if len(errMsg) != 0 {
		return fmt.Errorf(`validation failed: %s`, strings.Join(errMsg, "\n"))
	}
	return nil
}

// TimeoutDuration converts the configured timeout to a time.Duration.
func (s Settings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// DefaultConfigPath resolves the config file location: CONFIG_PATH env var
// (a .env file is honored when present) or config.yaml.
func DefaultConfigPath() string {
	_ = godotenv.Load()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

// EnvLogPath returns the LOG_PATH env var override, if any.
func EnvLogPath() string {
	_ = godotenv.Load()
	return os.Getenv("LOG_PATH")
}
