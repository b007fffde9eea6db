package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/25smoking/procfinder/internal/embedded"
	"gopkg.in/yaml.v3"
)

const DefaultName = "procfinder.yaml"

// Checks lists every known check id in default order.
var Checks = []string{"deleted", "path", "promiscuous", "ps", "thread", "cwd", "preload"}

type Config struct {
	ProcRoot    string       `yaml:"proc_root"`
	PacketTable string       `yaml:"packet_table"`
	PS          PSConfig     `yaml:"ps"`
	Thread      ThreadConfig `yaml:"thread"`
	Cwd         CwdConfig    `yaml:"cwd"`
	Checks      []string     `yaml:"checks"`
}

type PSConfig struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

type ThreadConfig struct {
	MaxSpread int `yaml:"max_spread"`
}

type CwdConfig struct {
	Prefixes []string `yaml:"prefixes"`
}

// PacketTablePath resolves packet_table against proc_root unless absolute.
func (c *Config) PacketTablePath() string {
	if filepath.IsAbs(c.PacketTable) {
		return c.PacketTable
	}
	return filepath.Join(c.ProcRoot, c.PacketTable)
}

func (c *Config) Validate() error {
	var errs []error
	if c.ProcRoot == "" {
		errs = append(errs, errors.New("proc_root is empty"))
	}
	if c.PacketTable == "" {
		errs = append(errs, errors.New("packet_table is empty"))
	}
	if c.PS.Command == "" {
		errs = append(errs, errors.New("ps.command is empty"))
	}
	if c.PS.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ps.timeout must be positive, got %s", c.PS.Timeout))
	}
	if c.Thread.MaxSpread <= 0 {
		errs = append(errs, fmt.Errorf("thread.max_spread must be positive, got %d", c.Thread.MaxSpread))
	}
	if len(c.Cwd.Prefixes) == 0 {
		errs = append(errs, errors.New("cwd.prefixes is empty"))
	}
	if len(c.Checks) == 0 {
		errs = append(errs, errors.New("checks is empty"))
	}
	for _, name := range c.Checks {
		if !isKnownCheck(name) {
			errs = append(errs, fmt.Errorf("unknown check %q", name))
		}
	}
	return errors.Join(errs...)
}

func isKnownCheck(name string) bool {
	for _, c := range Checks {
		if c == name {
			return true
		}
	}
	return false
}

// ========== Loader Functions ==========

func loadConfigData(configPath string) ([]byte, error) {
	// 1. an explicit path must exist
	if configPath != "" {
		return os.ReadFile(configPath)
	}

	// 2. config/ under the working directory
	local := filepath.Join("config", DefaultName)
	if _, err := os.Stat(local); err == nil {
		return os.ReadFile(local)
	}

	// 3. embedded default (embed paths always use forward slashes)
	return embedded.Content.ReadFile("config/" + DefaultName)
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	data, err := embedded.Content.ReadFile("config/" + DefaultName)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}
	return parse(data)
}

// Load reads configPath, ./config/procfinder.yaml or the embedded default, in
// that order. Keys missing from a file keep their embedded default values.
func Load(configPath string) (*Config, error) {
	data, err := loadConfigData(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	base, err := embedded.Content.ReadFile("config/" + DefaultName)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(base, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
