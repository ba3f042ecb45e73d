package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nocturnecity/density-resizer/pkg"
)

// Config is the optional YAML run configuration. Zero values fall back to
// the built-in defaults.
type Config struct {
	Source    string              `yaml:"source"`
	OutputDir string              `yaml:"output_dir"`
	Filter    string              `yaml:"filter"`
	Workers   int                 `yaml:"workers"`
	Sizes     pkg.SizeTable       `yaml:"sizes"`
	Publish   *pkg.PublishOptions `yaml:"publish"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Request builds a resize request from the configuration, filling defaults.
func (c *Config) Request() pkg.Request {
	req := pkg.Request{
		SourcePath: c.Source,
		OutputDir:  c.OutputDir,
		Filter:     c.Filter,
		Workers:    c.Workers,
		Sizes:      c.Sizes.Clone(),
		Publish:    c.Publish,
	}
	if req.SourcePath == "" {
		req.SourcePath = pkg.DefaultSourcePath
	}
	if req.Filter == "" {
		req.Filter = DefaultFilter
	}
	if req.Workers == 0 {
		req.Workers = 1
	}
	if len(req.Sizes) == 0 {
		req.Sizes = pkg.DefaultSizeTable()
	}
	return req
}
