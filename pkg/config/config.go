package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/view"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Data DataConfig `yaml:"data" json:"data" jsonschema:"description=Data file configuration"`

	Map MapConfig `yaml:"map" json:"map" jsonschema:"description=Map rendering configuration"`

	Colors ColorsConfig `yaml:"colors" json:"colors" jsonschema:"description=Point colors by field value"`

	Filters []string `yaml:"filters" json:"filters" jsonschema:"description=Columns offered as multiselect filters"`
}

// DataConfig holds data file settings
type DataConfig struct {
	Path            string        `yaml:"path" json:"path" jsonschema:"default=data/water_main_breaks.xml,description=Path to the XML feed file"`
	CacheTTL        time.Duration `yaml:"cache_ttl" json:"cache_ttl" jsonschema:"default=0s,description=How long file content stays cached (0 keeps it until reload)"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" jsonschema:"default=0s,description=How often to check the file for changes (0 disables)"`
	RetryAttempts   int           `yaml:"retry_attempts" json:"retry_attempts" jsonschema:"default=3,minimum=1,description=Read attempts on transient errors"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=50ms,description=Initial delay between read attempts"`
}

// MapConfig holds map view settings
type MapConfig struct {
	Title   string  `yaml:"title" json:"title" jsonschema:"default=Calgary Water Main Breaks Visualization,description=Page title"`
	Zoom    float64 `yaml:"zoom" json:"zoom" jsonschema:"default=10,minimum=1,maximum=20,description=Initial zoom level"`
	Pitch   float64 `yaml:"pitch" json:"pitch" jsonschema:"default=50,minimum=0,maximum=85,description=Initial camera pitch in degrees"`
	Radius  int     `yaml:"radius" json:"radius" jsonschema:"default=100,minimum=1,description=Point radius in meters"`
	Tooltip string  `yaml:"tooltip" json:"tooltip" jsonschema:"description=Tooltip template, fields referenced as {{.field}}"`
}

// ColorsConfig maps values of a field to RGB colors
type ColorsConfig struct {
	Field   string           `yaml:"field" json:"field" jsonschema:"default=break_type,description=Field used to pick point color"`
	Mapping map[string][]int `yaml:"mapping" json:"mapping" jsonschema:"description=RGB color for each known field value"`
	Default []int            `yaml:"default" json:"default" jsonschema:"description=RGB color for unknown values"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults, used when no config file is given
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for data
	if cfg.Data.Path == "" {
		cfg.Data.Path = "data/water_main_breaks.xml"
	}
	if cfg.Data.RetryAttempts == 0 {
		cfg.Data.RetryAttempts = 3
	}
	if cfg.Data.RetryDelay == 0 {
		cfg.Data.RetryDelay = 50 * time.Millisecond
	}

	// set defaults for map
	if cfg.Map.Title == "" {
		cfg.Map.Title = "Calgary Water Main Breaks Visualization"
	}
	if cfg.Map.Zoom == 0 {
		cfg.Map.Zoom = 10
	}
	if cfg.Map.Pitch == 0 {
		cfg.Map.Pitch = 50
	}
	if cfg.Map.Radius == 0 {
		cfg.Map.Radius = 100
	}
	if cfg.Map.Tooltip == "" {
		cfg.Map.Tooltip = view.DefaultTooltip
	}

	// set defaults for colors
	if cfg.Colors.Field == "" {
		cfg.Colors.Field = "break_type"
	}
	if cfg.Colors.Mapping == nil {
		cfg.Colors.Mapping = map[string][]int{"AC": {255, 0, 0}, "ACG": {0, 255, 0}}
	}
	if cfg.Colors.Default == nil {
		cfg.Colors.Default = []int{0, 0, 255}
	}

	if cfg.Filters == nil {
		cfg.Filters = []string{"year", "status"}
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate data config
	if cfg.Data.RetryAttempts < 1 {
		return fmt.Errorf("data.retry_attempts must be at least 1")
	}
	if cfg.Data.CacheTTL < 0 || cfg.Data.RefreshInterval < 0 {
		return fmt.Errorf("data.cache_ttl and data.refresh_interval must be non-negative")
	}

	// validate map config
	if cfg.Map.Zoom < 1 || cfg.Map.Zoom > 20 {
		return fmt.Errorf("map.zoom must be between 1 and 20")
	}
	if cfg.Map.Pitch < 0 || cfg.Map.Pitch > 85 {
		return fmt.Errorf("map.pitch must be between 0 and 85")
	}

	// validate colors
	for k, v := range cfg.Colors.Mapping {
		if _, err := toColor(v); err != nil {
			return fmt.Errorf("colors.mapping.%s: %w", k, err)
		}
	}
	if _, err := toColor(cfg.Colors.Default); err != nil {
		return fmt.Errorf("colors.default: %w", err)
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}

// ColorMapping returns validated color mapping and fallback color
func (c *Config) ColorMapping() (mapping map[string]domain.Color, fallback domain.Color, err error) {
	mapping = make(map[string]domain.Color, len(c.Colors.Mapping))
	for k, v := range c.Colors.Mapping {
		clr, err := toColor(v)
		if err != nil {
			return nil, domain.Color{}, fmt.Errorf("color for %s: %w", k, err)
		}
		mapping[k] = clr
	}
	if fallback, err = toColor(c.Colors.Default); err != nil {
		return nil, domain.Color{}, fmt.Errorf("default color: %w", err)
	}
	return mapping, fallback, nil
}

func toColor(v []int) (domain.Color, error) {
	if len(v) != 3 {
		return domain.Color{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	var c domain.Color
	for i, x := range v {
		if x < 0 || x > 255 {
			return domain.Color{}, fmt.Errorf("component %d out of range: %d", i, x)
		}
		c[i] = uint8(x) //nolint:gosec // range checked above
	}
	return c, nil
}
