// Package config loads picomap settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"picomap/internal/picomap"
	"picomap/internal/trace"
)

// EnvPath names the environment variable holding an explicit config path.
const EnvPath = "PICOMAP_CONFIG"

// Config is the full picomap configuration.
type Config struct {
	Window Window `toml:"window"`
	Render Render `toml:"render"`
	Trace  Trace  `toml:"trace"`
}

// Window configures the floating side panel.
type Window struct {
	Width    int    `toml:"width"`
	Winblend int    `toml:"winblend"`
	Winhl    string `toml:"winhl"`
	Filetype string `toml:"filetype"`
	Anchor   string `toml:"anchor"`
}

// Render configures the scaler.
type Render struct {
	Smoothing string `toml:"smoothing"`
}

// Trace configures diagnostics output.
type Trace struct {
	Level     string `toml:"level"`
	Mode      string `toml:"mode"`
	Output    string `toml:"output"`
	RingSize  int    `toml:"ring_size"`
	Heartbeat string `toml:"heartbeat"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{
			Width:    2,
			Winhl:    "Normal:Picomap",
			Filetype: "picomap",
			Anchor:   "NE",
		},
		Render: Render{Smoothing: "forward"},
		Trace: Trace{
			Level:     "off",
			Mode:      "stream",
			Output:    "-",
			RingSize:  4096,
			Heartbeat: "0s",
		},
	}
}

// DefaultPath returns the per-user config location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "picomap", "picomap.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "picomap", "picomap.toml"), nil
}

// Load resolves the config file and decodes it over the defaults. An
// explicit path, or one taken from $PICOMAP_CONFIG, must exist; a missing
// default file yields Default().
func Load(explicit string) (Config, string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path != "" {
		cfg, err := LoadFile(path)
		return cfg, path, err
	}

	path, err := DefaultPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return Config{}, path, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile decodes a single file over the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text over the defaults and validates the result.
func Decode(data string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width < 1 {
		errs = append(errs, fmt.Errorf("[window].width must be at least 1, got %d", c.Window.Width))
	}
	if c.Window.Winblend < 0 || c.Window.Winblend > 100 {
		errs = append(errs, fmt.Errorf("[window].winblend must be in [0,100], got %d", c.Window.Winblend))
	}
	switch c.Window.Anchor {
	case "NW", "NE", "SW", "SE":
	default:
		errs = append(errs, fmt.Errorf("[window].anchor must be one of NW|NE|SW|SE, got %q", c.Window.Anchor))
	}
	if _, err := picomap.ParseSmoothing(c.Render.Smoothing); err != nil {
		errs = append(errs, fmt.Errorf("[render].smoothing: %w", err))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("[trace].level: %w", err))
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, fmt.Errorf("[trace].mode: %w", err))
	}
	if c.Trace.RingSize < 0 {
		errs = append(errs, fmt.Errorf("[trace].ring_size must not be negative, got %d", c.Trace.RingSize))
	}
	if _, err := c.Trace.HeartbeatInterval(); err != nil {
		errs = append(errs, fmt.Errorf("[trace].heartbeat: %w", err))
	}
	return errors.Join(errs...)
}

// SmoothingMode returns the parsed smoothing mode.
func (r Render) SmoothingMode() picomap.Smoothing {
	s, err := picomap.ParseSmoothing(r.Smoothing)
	if err != nil {
		return picomap.SmoothForward
	}
	return s
}

// HeartbeatInterval parses the heartbeat duration. An empty value disables it.
func (t Trace) HeartbeatInterval() (time.Duration, error) {
	if t.Heartbeat == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.Heartbeat)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval %s", d)
	}
	return d, nil
}

// TracerConfig converts the section into a trace.Config.
func (t Trace) TracerConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(t.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(t.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	heartbeat, err := t.HeartbeatInterval()
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     trace.FormatAuto,
		OutputPath: t.Output,
		RingSize:   t.RingSize,
		Heartbeat:  heartbeat,
	}, nil
}
