package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
	"github.com/kilianp07/ridedispatch/core/kpi"
	"github.com/kilianp07/ridedispatch/core/metrics"
	"github.com/kilianp07/ridedispatch/infra/mqtt"
	"github.com/kilianp07/ridedispatch/simulator"
)

// EnvPrefix marks environment variables that override file settings.
// K_COMPANY__NAME overrides company.name.
const EnvPrefix = "K_"

type Config struct {
	Company dispatch.Config  `json:"company"`
	Fleet   FleetConfig      `json:"fleet"`
	Source  simulator.Config `json:"source"`
	MQTT    mqtt.Config      `json:"mqtt"`
	Metrics metrics.Config   `json:"metrics"`
	Journal journal.Config   `json:"journal"`
	KPI     kpi.Config       `json:"kpi"`
	Sentry  SentryConfig     `json:"sentry"`
}

// Load reads the file at path, applies environment overrides, fills defaults
// and validates every section. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// zero is a valid request count, so only an absent key takes the default
	if !k.Exists("source.requests") {
		cfg.Source.Requests = simulator.DefaultRequests
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Company.SetDefaults()
	c.Fleet.SetDefaults()
	c.Source.SetDefaults()
	c.MQTT.SetDefaults()
	c.Journal.SetDefaults()
	c.KPI.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := dispatch.NewMatcher(c.Company.Matcher); err != nil {
		return fmt.Errorf("company.matcher: %w", err)
	}
	if err := c.Fleet.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if err := c.KPI.Validate(); err != nil {
		return err
	}
	if err := c.Sentry.Validate(); err != nil {
		return err
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d].type is required", i)
		}
	}
	return nil
}
