package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "projmux"
	configFileName = "config.yaml"

	defaultTheme      = "mocha"
	defaultLogLevel   = "info"
	defaultMaxDepth   = 6
	defaultMarker     = ".git"
	defaultLabelWidth = 25
	defaultTmuxBinary = "tmux"

	// minLabelWidth keeps label tail truncation well defined.
	minLabelWidth = 5
)

type Config struct {
	Theme      string     `yaml:"theme"`
	LogLevel   string     `yaml:"log_level"`
	LabelWidth int        `yaml:"label_width"`
	Scan       ScanConfig `yaml:"scan"`
	Tmux       TmuxConfig `yaml:"tmux"`
}

type ScanConfig struct {
	MaxDepth int    `yaml:"max_depth"`
	Marker   string `yaml:"marker"`
}

type TmuxConfig struct {
	Binary string `yaml:"binary"`
	Socket string `yaml:"socket"`
}

// LookPathFunc is the function signature for looking up executables.
type LookPathFunc func(name string) (string, error)

func DefaultConfig() Config {
	return Config{
		Theme:      defaultTheme,
		LogLevel:   defaultLogLevel,
		LabelWidth: defaultLabelWidth,
		Scan: ScanConfig{
			MaxDepth: defaultMaxDepth,
			Marker:   defaultMarker,
		},
		Tmux: TmuxConfig{
			Binary: defaultTmuxBinary,
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFromDir loads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

// LoadFrom reads configPath over the defaults. A missing file is not an
// error; zero values in the file keep their defaults.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LabelWidth == 0 {
		c.LabelWidth = def.LabelWidth
	}
	if c.Scan.MaxDepth == 0 {
		c.Scan.MaxDepth = def.Scan.MaxDepth
	}
	if c.Scan.Marker == "" {
		c.Scan.Marker = def.Scan.Marker
	}
	if c.Tmux.Binary == "" {
		c.Tmux.Binary = def.Tmux.Binary
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.LabelWidth < minLabelWidth {
		errs = append(errs, fmt.Errorf("label_width must be >= %d (got %d)", minLabelWidth, c.LabelWidth))
	}
	if c.Scan.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("scan.max_depth must be >= 1 (got %d)", c.Scan.MaxDepth))
	}
	if strings.TrimSpace(c.Scan.Marker) == "" {
		errs = append(errs, errors.New("scan.marker must not be empty"))
	}
	if strings.Contains(c.Scan.Marker, "/") {
		errs = append(errs, fmt.Errorf("scan.marker must be a single name (got %q)", c.Scan.Marker))
	}
	return errors.Join(errs...)
}

// DetectedTmux returns the path of the configured tmux binary.
func (c *Config) DetectedTmux() (string, error) {
	return c.DetectedTmuxWith(exec.LookPath)
}

// DetectedTmuxWith resolves the configured tmux binary using lookPath.
func (c *Config) DetectedTmuxWith(lookPath LookPathFunc) (string, error) {
	binary := c.Tmux.Binary
	if binary == "" {
		binary = defaultTmuxBinary
	}
	path, err := lookPath(binary)
	if err != nil {
		return "", fmt.Errorf("tmux binary %q not found: %w", binary, err)
	}
	return path, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// ResolveDataDir returns the directory for the log and lock files.
// If configDir is specified, uses that; otherwise ~/.config/projmux.
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return filepath.Dir(getConfigPath())
}

func getConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, configFileName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, configFileName)
	}

	return filepath.Join(home, ".config", appName, configFileName)
}
