// Package config loads zen's TOML configuration from the XDG config dir.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/editor"
	"github.com/zenote/zen/palette"
	"github.com/zenote/zen/trigger"
)

// Config represents the application configuration
type Config struct {
	Relay   Relay   `toml:"relay"`
	Trigger Trigger `toml:"trigger"`
	AI      AI      `toml:"ai"`
	Palette Palette `toml:"palette"`
	Storage Storage `toml:"storage"`
	Theme   Theme   `toml:"theme"`
}

type Relay struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type Trigger struct {
	Char        string `toml:"char"`
	ScanLimit   int    `toml:"scan_limit"`
	StopChars   string `toml:"stop_chars"`
	Terminators string `toml:"terminators"`
}

type AI struct {
	ContextWindow int    `toml:"context_window"`
	ReplacePolicy string `toml:"replace_policy"`
}

type Palette struct {
	Width       int `toml:"width"`
	MaxRows     int `toml:"max_rows"`
	EdgePadding int `toml:"edge_padding"`
}

type Storage struct {
	Path string `toml:"path"`
}

// Theme defines the editor colors. Empty values keep the built-in style.
type Theme struct {
	Heading   string `toml:"heading"`
	Quote     string `toml:"quote"`
	Accent    string `toml:"accent"`
	Ghost     string `toml:"ghost"`
	Selection string `toml:"selection"`
	Notice    string `toml:"notice"`
	CodeTheme string `toml:"code_theme"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	tr := trigger.DefaultConfig()
	pal := palette.DefaultConfig()
	return &Config{
		Relay: Relay{
			BaseURL: "http://localhost:3000/api",
			Timeout: Duration{30 * time.Second},
		},
		Trigger: Trigger{
			Char:        string(tr.Char),
			ScanLimit:   tr.ScanLimit,
			StopChars:   tr.StopChars,
			Terminators: tr.Terminators,
		},
		AI: AI{
			ContextWindow: ai.DefaultConfig().ContextWindow,
			ReplacePolicy: ai.ReplaceCaptured.String(),
		},
		Palette: Palette{
			Width:       pal.Width,
			MaxRows:     pal.MaxRows,
			EdgePadding: pal.EdgePadding,
		},
		Storage: Storage{Path: ""},
		Theme: Theme{
			Heading:   "212",
			Quote:     "245",
			Accent:    "39",
			Ghost:     "241",
			Selection: "237",
			Notice:    "214",
			CodeTheme: "monokai",
		},
	}
}

// Path returns the XDG-compliant config file path
func Path() (string, error) {
	return xdg.ConfigFile("zen/config.toml")
}

// DefaultStoragePath is where notes live when [storage] path is empty.
func DefaultStoragePath() (string, error) {
	return xdg.DataFile("zen/notes.db")
}

// Load reads the config at path, creating it with defaults on first run.
// An empty path means Path().
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// Fill sections added after the file was written so the user can see them.
	if cfg.fillDefaults() {
		_ = cfg.Save(path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) fillDefaults() bool {
	def := DefaultConfig()
	updated := false

	if c.Relay.BaseURL == "" {
		c.Relay.BaseURL = def.Relay.BaseURL
		updated = true
	}
	if c.Relay.Timeout.Duration == 0 {
		c.Relay.Timeout = def.Relay.Timeout
		updated = true
	}
	if c.Trigger.Char == "" {
		c.Trigger = def.Trigger
		updated = true
	}
	if c.AI.ContextWindow == 0 {
		c.AI.ContextWindow = def.AI.ContextWindow
		updated = true
	}
	if c.AI.ReplacePolicy == "" {
		c.AI.ReplacePolicy = def.AI.ReplacePolicy
		updated = true
	}
	if c.Palette.Width == 0 {
		c.Palette = def.Palette
		updated = true
	}
	if c.Theme.Heading == "" {
		c.Theme = def.Theme
		updated = true
	}
	return updated
}

// Validate reports values no component can run with.
func (c *Config) Validate() error {
	if n := len([]rune(c.Trigger.Char)); n != 1 {
		return fmt.Errorf("trigger.char must be one character, got %q", c.Trigger.Char)
	}
	if _, err := ai.ParseReplacePolicy(c.AI.ReplacePolicy); err != nil {
		return err
	}
	if c.Relay.Timeout.Duration < 0 {
		return fmt.Errorf("relay.timeout must not be negative")
	}
	return nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// StoragePath resolves the notes database location.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	return DefaultStoragePath()
}

func (c *Config) TriggerConfig() trigger.Config {
	cfg := trigger.Config{
		ScanLimit:   c.Trigger.ScanLimit,
		StopChars:   c.Trigger.StopChars,
		Terminators: c.Trigger.Terminators,
	}
	if r := []rune(c.Trigger.Char); len(r) == 1 {
		cfg.Char = r[0]
	}
	return cfg
}

func (c *Config) PaletteConfig() palette.Config {
	cfg := palette.DefaultConfig()
	if c.Palette.Width > 0 {
		cfg.Width = c.Palette.Width
	}
	if c.Palette.MaxRows > 0 {
		cfg.MaxRows = c.Palette.MaxRows
	}
	if c.Palette.EdgePadding >= 0 {
		cfg.EdgePadding = c.Palette.EdgePadding
	}
	cfg.Trigger = c.TriggerConfig()
	return cfg
}

func (c *Config) AIConfig() ai.Config {
	cfg := ai.DefaultConfig()
	if c.AI.ContextWindow > 0 {
		cfg.ContextWindow = c.AI.ContextWindow
	}
	// Validate has already rejected unknown names.
	cfg.Policy, _ = ai.ParseReplacePolicy(c.AI.ReplacePolicy)
	return cfg
}

// Style applies the theme colors over editor.DefaultStyle.
func (c *Config) Style() editor.Style {
	st := editor.DefaultStyle()
	t := c.Theme
	if t.Heading != "" {
		for i := range st.Heading {
			st.Heading[i] = st.Heading[i].Foreground(lipgloss.Color(t.Heading))
		}
	}
	if t.Quote != "" {
		st.Quote = st.Quote.Foreground(lipgloss.Color(t.Quote))
	}
	if t.Accent != "" {
		st.ListMarker = st.ListMarker.Foreground(lipgloss.Color(t.Accent))
	}
	if t.Ghost != "" {
		st.Ghost = st.Ghost.Foreground(lipgloss.Color(t.Ghost))
	}
	if t.Selection != "" {
		st.Selection = st.Selection.Background(lipgloss.Color(t.Selection))
	}
	if t.Notice != "" {
		st.Notice = st.Notice.Foreground(lipgloss.Color(t.Notice))
	}
	return st
}

func (c *Config) PaletteStyle() palette.Style {
	st := palette.DefaultStyle()
	if c.Theme.Accent != "" {
		st.Selected = st.Selected.Background(lipgloss.Color(c.Theme.Accent))
	}
	return st
}

// EditorConfig builds the editor configuration; the host adds the note,
// store, relay and clipboard.
func (c *Config) EditorConfig() editor.Config {
	return editor.Config{
		RequestTimeout: c.Relay.Timeout.Duration,
		AI:             c.AIConfig(),
		Palette:        c.PaletteConfig(),
		Style:          c.Style(),
		PaletteStyle:   c.PaletteStyle(),
		CodeTheme:      c.Theme.CodeTheme,
	}
}
