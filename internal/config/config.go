package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/termwin/internal/input/key"
	"github.com/dshills/termwin/internal/logbridge"
)

// EnvPrefix namespaces the environment overlay.
const EnvPrefix = "TERMWIN_"

// Duration unmarshals from TOML strings like "50ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Duration returns the standard library value.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Config is the full runtime configuration.
type Config struct {
	// Tick bounds the driver's input poll, and with it the latency of
	// log flushing and status application.
	Tick Duration `toml:"tick"`

	// CursorVisible controls whether the hardware cursor is ever
	// shown; window cursor positions are tracked either way.
	CursorVisible bool `toml:"cursor_visible"`

	Log     LogConfig     `toml:"log"`
	Keys    KeysConfig    `toml:"keys"`
	Actions ActionsConfig `toml:"actions"`
}

// LogConfig controls the log bridge.
type LogConfig struct {
	// Level is the minimum captured level: debug, info, warn, error.
	Level string `toml:"level"`

	// Capacity bounds the record queue.
	Capacity int `toml:"capacity"`

	// Echo optionally names a file that receives a copy of every
	// captured record.
	Echo string `toml:"echo"`
}

// KeysConfig holds binding specs by layer. Keys follow the stroke
// grammar ("q", "ctrl+p", "pgup"); values are action identifiers.
type KeysConfig struct {
	Global map[string]string            `toml:"global"`
	Types  map[string]map[string]string `toml:"types"`
}

// ActionsConfig holds scripted actions: identifier to Lua chunk.
type ActionsConfig struct {
	Lua map[string]string `toml:"lua"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Tick:          Duration(50 * time.Millisecond),
		CursorVisible: true,
		Log: LogConfig{
			Level:    "info",
			Capacity: logbridge.DefaultCapacity,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file
// yields the defaults without error; a malformed one fails.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays TERMWIN_* environment variables. A nil lookup
// uses the process environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvPrefix + "TICK"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTICK: %w", EnvPrefix, err)
		}
		c.Tick = Duration(d)
	}
	if v, ok := lookup(EnvPrefix + "CURSOR_VISIBLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCURSOR_VISIBLE: %w", EnvPrefix, err)
		}
		c.CursorVisible = b
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLOG_CAPACITY: %w", EnvPrefix, err)
		}
		c.Log.Capacity = n
	}
	if v, ok := lookup(EnvPrefix + "LOG_ECHO"); ok {
		c.Log.Echo = v
	}
	return nil
}

// Validate checks for values the toolkit cannot run with.
func (c Config) Validate() error {
	if c.Tick.Duration() <= 0 {
		return fmt.Errorf("tick %v: must be positive", c.Tick.Duration())
	}
	if c.Log.Capacity <= 0 {
		return fmt.Errorf("log capacity %d: must be positive", c.Log.Capacity)
	}
	if _, err := logbridge.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if err := validateBindings(c.Keys.Global); err != nil {
		return fmt.Errorf("keys.global: %w", err)
	}
	for typeTag, specs := range c.Keys.Types {
		if err := validateBindings(specs); err != nil {
			return fmt.Errorf("keys.types.%s: %w", typeTag, err)
		}
	}

	for name, source := range c.Actions.Lua {
		if name == "" {
			return errors.New("actions.lua: empty action name")
		}
		if source == "" {
			return fmt.Errorf("actions.lua.%s: empty chunk", name)
		}
	}
	return nil
}

func validateBindings(specs map[string]string) error {
	for spec, action := range specs {
		if _, err := key.Parse(spec); err != nil {
			return err
		}
		if action == "" {
			return fmt.Errorf("binding %q: empty action", spec)
		}
	}
	return nil
}
