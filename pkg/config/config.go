package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"webscan/pkg/models"
	"webscan/pkg/utils"
)

// DefaultConcurrency is the number of probes allowed in flight at once
const DefaultConcurrency = 50

// CronParser parses the standard five-field schedule expressions
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds everything one scan needs. It is built once before the scan
// starts and only read afterwards.
type Config struct {
	Ranges      []string      `yaml:"ranges"`
	Ports       []int         `yaml:"ports"`
	Proxy       string        `yaml:"proxy"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	VerifyTLS   bool          `yaml:"verify_tls"`

	Output   string `yaml:"output"`
	Database string `yaml:"database"` // SQLite history, disabled when empty
	Schedule string `yaml:"schedule"` // cron expression, single run when empty
	Debug    bool   `yaml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Ranges: []string{
			"192.168.50.0/23",
			"192.168.49.0/24",
		},
		Ports:       []int{80, 443, 8080, 8443, 8000, 8888},
		Proxy:       "socks5h://127.0.0.1:1080",
		Timeout:     5 * time.Second,
		Concurrency: DefaultConcurrency,
		Output:      "web_scan_results.txt",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &models.ConfigurationError{Field: "config file", Value: path, Err: err}
	}

	return cfg, nil
}

// Validate checks every setting and returns a *models.ConfigurationError for
// the first one that cannot work.
func (c *Config) Validate() error {
	if len(c.Ranges) == 0 {
		return &models.ConfigurationError{Field: "ranges", Err: errors.New("no ranges configured")}
	}
	if len(c.Ports) == 0 {
		return &models.ConfigurationError{Field: "ports", Err: errors.New("no ports configured")}
	}
	for _, port := range c.Ports {
		if err := utils.ValidatePort(port); err != nil {
			return err
		}
	}
	if c.Concurrency < 1 {
		return &models.ConfigurationError{
			Field: "concurrency",
			Value: strconv.Itoa(c.Concurrency),
			Err:   errors.New("must be at least 1"),
		}
	}
	if c.Timeout <= 0 {
		return &models.ConfigurationError{
			Field: "timeout",
			Value: c.Timeout.String(),
			Err:   errors.New("must be positive"),
		}
	}
	if _, err := c.ProxyURL(); err != nil {
		return err
	}
	if c.Schedule != "" {
		if _, err := CronParser.Parse(c.Schedule); err != nil {
			return &models.ConfigurationError{Field: "schedule", Value: c.Schedule, Err: err}
		}
	}
	return nil
}

// ProxyURL parses the proxy setting. A nil URL means direct connections.
func (c *Config) ProxyURL() (*url.URL, error) {
	if strings.TrimSpace(c.Proxy) == "" {
		return nil, nil
	}

	u, err := url.Parse(strings.TrimSpace(c.Proxy))
	if err != nil {
		return nil, &models.ConfigurationError{Field: "proxy", Value: c.Proxy, Err: err}
	}

	switch u.Scheme {
	case "socks5", "socks5h", "http", "https":
	default:
		return nil, &models.ConfigurationError{
			Field: "proxy",
			Value: c.Proxy,
			Err:   fmt.Errorf("unsupported scheme %q", u.Scheme),
		}
	}
	if u.Host == "" {
		return nil, &models.ConfigurationError{Field: "proxy", Value: c.Proxy, Err: errors.New("missing host")}
	}

	return u, nil
}
