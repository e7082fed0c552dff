// Package config loads oocesk.toml, the driver's optional configuration
// file. Flags passed on the command line always override values loaded
// here (spec.md §6.3's "-config" flag).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config mirrors the run-time flags of cmd/oocesk, so a file can set
// defaults for any of them.
type Config struct {
	Verbose  bool   `toml:"verbose"`
	Color    string `toml:"color"`
	Trace    string `toml:"trace"`
	TraceDSN string `toml:"trace_dsn"`
	Main     string `toml:"main"`
}

// Load parses a TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &c, nil
}
