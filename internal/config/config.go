// Package config loads analysis settings and declarative monitor definitions
// from YAML or TOML files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mabhi256/jalias/internal/trace"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// Output modes understood by the analyze command.
const (
	OutputCLI     = "cli"
	OutputCLIMore = "cli-more"
	OutputTUI     = "tui"
)

var outputs = []string{OutputCLI, OutputCLIMore, OutputTUI}

type Config struct {
	Analysis Analysis     `yaml:"analysis" toml:"analysis"`
	Monitors []MonitorDef `yaml:"monitors" toml:"monitors"`
}

type Analysis struct {
	QueryRate   int      `yaml:"query_rate" toml:"query_rate"`
	CollectRate int      `yaml:"collect_rate" toml:"collect_rate"`
	UpdateRate  int      `yaml:"update_rate" toml:"update_rate"`
	Output      string   `yaml:"output" toml:"output"`
	Collect     []string `yaml:"collect" toml:"collect"`
	CSVDir      string   `yaml:"csv_dir,omitempty" toml:"csv_dir"`
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := decodeYAML(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("built-in configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads a configuration file on top of the defaults. The format follows
// the file extension. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".toml":
		err = decodeTOML(data, cfg)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// decodeTOML overlays a TOML document on cfg. The toml decoder reuses slice
// backing arrays, so the list-valued defaults are detached first and put
// back only when the document leaves them unset.
func decodeTOML(data []byte, cfg *Config) error {
	monitors, collect := cfg.Monitors, cfg.Analysis.Collect
	cfg.Monitors, cfg.Analysis.Collect = nil, nil

	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("monitors") {
		cfg.Monitors = monitors
	}
	if !meta.IsDefined("analysis", "collect") {
		cfg.Analysis.Collect = collect
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("failed to parse TOML: unknown key %q", undecoded[0].String())
	}
	return nil
}

// Validate checks the settings and compiles the monitor definitions once so
// that mistakes surface before any trace is read.
func (c *Config) Validate() error {
	a := c.Analysis
	for name, rate := range map[string]int{
		"query_rate":   a.QueryRate,
		"collect_rate": a.CollectRate,
		"update_rate":  a.UpdateRate,
	} {
		if rate < 1 {
			return fmt.Errorf("%s %d: %w", name, rate, trace.ErrInvalidRate)
		}
	}
	if !slices.Contains(outputs, a.Output) {
		return fmt.Errorf("output %q must be one of %s", a.Output, strings.Join(outputs, ", "))
	}
	if _, err := a.Collectors(); err != nil {
		return err
	}
	if len(c.Monitors) == 0 {
		return errors.New("at least one monitor is required")
	}
	if _, err := Compile(c.Monitors); err != nil {
		return err
	}
	return nil
}

// Collectors resolves the configured collector names.
func (a Analysis) Collectors() ([]trace.Collector, error) {
	out := make([]trace.Collector, 0, len(a.Collect))
	for _, name := range a.Collect {
		c, ok := trace.CollectorByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown collector %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

// DriverOptions maps the settings onto trace driver options.
func (a Analysis) DriverOptions() (trace.Options, error) {
	collectors, err := a.Collectors()
	if err != nil {
		return trace.Options{}, err
	}
	return trace.Options{
		QueryRate:   a.QueryRate,
		CollectRate: a.CollectRate,
		UpdateRate:  a.UpdateRate,
		Collectors:  collectors,
	}, nil
}
