package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default header signatures recognized by the stripper.
// These are the two variants of the 42 school banner's first line.
const (
	DefaultSignature1 = "/* ************************************************************************** */"
	DefaultSignature2 = "/******************************************************************************/"
)

// DefaultHeaderLines is the number of lines the banner occupies.
const DefaultHeaderLines = 11

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // Maximum CPU usage (e.g., 10.0)
}

type Config struct {
	Signatures     []string       `yaml:"signatures" json:"signatures"`           // Header signatures (default: 42 banner variants)
	HeaderLines    int            `yaml:"header_lines" json:"header_lines"`       // Lines removed on a match (default: 11)
	Extensions     []string       `yaml:"extensions" json:"extensions"`           // Optional allowlist (e.g., [.c, .h]); empty = all files
	DatabasePath   string         `yaml:"database_path" json:"database_path"`     // SQLite history DB; empty disables history
	Prometheus     PrometheusCfg  `yaml:"prometheus" json:"prometheus"`           // Metrics endpoint; port 0 disables the server
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
}

var (
	errNoSignatures   = errors.New("signatures must not contain empty strings")
	errHeaderLines    = errors.New("header_lines must be positive")
	errBadExtension   = errors.New("extensions must start with a dot")
	errNegativeRotate = errors.New("logging.rotation_days cannot be negative")
)

// Default returns the built-in configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Signatures) == 0 {
		c.Signatures = []string{DefaultSignature1, DefaultSignature2}
	}
	if c.HeaderLines <= 0 {
		c.HeaderLines = DefaultHeaderLines
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}
}

func (c *Config) validateAndDefault() error {
	if c.HeaderLines < 0 {
		return errHeaderLines
	}
	if c.Logging.RotationDays < 0 {
		return errNegativeRotate
	}

	for _, sig := range c.Signatures {
		if strings.TrimSpace(sig) == "" {
			return errNoSignatures
		}
	}

	cleaned := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: %s", errBadExtension, ext)
		}
		cleaned = append(cleaned, ext)
	}
	c.Extensions = cleaned

	c.applyDefaults()
	return nil
}

// MatchesExtension reports whether a file name passes the extension
// allowlist. An empty allowlist admits every file.
func (c *Config) MatchesExtension(name string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range c.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
