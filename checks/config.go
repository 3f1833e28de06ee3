package checks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CheckConfig tunes one check from the lint config file.
type CheckConfig struct {
	Disabled bool   `yaml:"disabled"`
	Severity string `yaml:"severity"` // "error" or "warning", empty keeps the default
}

// Config is the optional lint configuration, keyed by check name:
//
//	checks:
//	  pinning:
//	    disabled: true
//	  duplicates:
//	    severity: warning
type Config struct {
	Checks map[string]CheckConfig `yaml:"checks"`
}

// LoadConfig reads a YAML lint configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lint config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse lint config %s: %w", path, err)
	}
	for name, cc := range cfg.Checks {
		switch cc.Severity {
		case "", string(SeverityError), string(SeverityWarning):
		default:
			return nil, fmt.Errorf("lint config %s: check %q: unknown severity %q", path, name, cc.Severity)
		}
	}
	return &cfg, nil
}

func (c *Config) disabled(check string) bool {
	if c == nil {
		return false
	}
	return c.Checks[check].Disabled
}

func (c *Config) severity(check string) (Severity, bool) {
	if c == nil {
		return "", false
	}
	if s := c.Checks[check].Severity; s != "" {
		return Severity(s), true
	}
	return "", false
}
