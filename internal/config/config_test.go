package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termwin.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Tick != want.Tick || cfg.Log != want.Log {
		t.Errorf("Load = %+v, want defaults %+v", cfg, want)
	}
	if !cfg.CursorVisible {
		t.Error("CursorVisible default = false, want true")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tick = "25ms"

[log]
level = "debug"
capacity = 64

[keys.global]
"ctrl+p" = "log.sample"

[keys.types.tasks]
"p" = "task.pause"

[actions.lua]
"demo.hello" = "win.write('hello')"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Tick.Duration(); got != 25*time.Millisecond {
		t.Errorf("Tick = %v, want 25ms", got)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Capacity != 64 {
		t.Errorf("Log.Capacity = %d, want 64", cfg.Log.Capacity)
	}
	if got := cfg.Keys.Global["ctrl+p"]; got != "log.sample" {
		t.Errorf("Keys.Global[ctrl+p] = %q, want log.sample", got)
	}
	if got := cfg.Keys.Types["tasks"]["p"]; got != "task.pause" {
		t.Errorf("Keys.Types[tasks][p] = %q, want task.pause", got)
	}
	if got := cfg.Actions.Lua["demo.hello"]; got != "win.write('hello')" {
		t.Errorf("Actions.Lua[demo.hello] = %q", got)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Log.Capacity != Default().Log.Capacity {
		t.Errorf("Log.Capacity = %d, want default %d", cfg.Log.Capacity, Default().Log.Capacity)
	}
	if cfg.Tick != Default().Tick {
		t.Errorf("Tick = %v, want default %v", cfg.Tick, Default().Tick)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `tick = [broken`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on malformed TOML")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TERMWIN_TICK":           "10ms",
		"TERMWIN_LOG_LEVEL":      "error",
		"TERMWIN_LOG_CAPACITY":   "32",
		"TERMWIN_CURSOR_VISIBLE": "false",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if got := cfg.Tick.Duration(); got != 10*time.Millisecond {
		t.Errorf("Tick = %v, want 10ms", got)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.Log.Capacity != 32 {
		t.Errorf("Log.Capacity = %d, want 32", cfg.Log.Capacity)
	}
	if cfg.CursorVisible {
		t.Error("CursorVisible = true, want env override false")
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad tick", "TERMWIN_TICK", "soon"},
		{"bad capacity", "TERMWIN_LOG_CAPACITY", "many"},
		{"bad cursor flag", "TERMWIN_CURSOR_VISIBLE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			lookup := func(k string) (string, bool) {
				if k == tt.key {
					return tt.val, true
				}
				return "", false
			}
			if err := cfg.ApplyEnv(lookup); err == nil {
				t.Errorf("ApplyEnv accepted %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero tick", func(c *Config) { c.Tick = 0 }, false},
		{"negative capacity", func(c *Config) { c.Log.Capacity = -1 }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad global key spec", func(c *Config) {
			c.Keys.Global = map[string]string{"ctrl+": "x"}
		}, false},
		{"empty global action", func(c *Config) {
			c.Keys.Global = map[string]string{"q": ""}
		}, false},
		{"bad type key spec", func(c *Config) {
			c.Keys.Types = map[string]map[string]string{"tasks": {"spoon": "x"}}
		}, false},
		{"empty lua chunk", func(c *Config) {
			c.Actions.Lua = map[string]string{"demo.noop": ""}
		}, false},
		{"good bindings", func(c *Config) {
			c.Keys.Global = map[string]string{"ctrl+p": "log.sample", "pgup": "win.page_up"}
			c.Keys.Types = map[string]map[string]string{"tasks": {"p": "task.pause"}}
			c.Actions.Lua = map[string]string{"demo.hello": "win.write('hi')"}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate accepted bad config")
			}
		})
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1500ms")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got := d.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", got)
	}
	if err := d.UnmarshalText([]byte("whenever")); err == nil {
		t.Error("UnmarshalText accepted garbage")
	}
}
