package editor

import (
	"log/slog"
	"time"

	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/ghost"
	"github.com/zenote/zen/palette"
)

// Config configures the editor Model.
type Config struct {
	// Initial document, as Markdown.
	Markdown string

	// NoteID is passed to Store on every save.
	NoteID int64
	Store  Store
	// SaveTimeout bounds a single Store call. Zero means 5s.
	SaveTimeout time.Duration

	Clipboard Clipboard

	// OnChange is called after every change that touched text or blocks.
	OnChange func(ChangeEvent)

	// Relay serves the AI commands. AI keys report a notice when nil.
	Relay ai.Relay
	// RequestTimeout bounds one relay call. Zero means no extra bound.
	RequestTimeout time.Duration

	AI      ai.Config
	Palette palette.Config
	Ghost   ghost.Config

	KeyMap KeyMap
	// Style and PaletteStyle are used as given; the zero value renders
	// unstyled. Hosts usually pass DefaultStyle and palette.DefaultStyle.
	Style        Style
	PaletteStyle palette.Style

	// CodeTheme is a chroma style name for code rows.
	CodeTheme string

	TabWidth     int
	HistoryLimit int
	ReadOnly     bool

	Logger *slog.Logger
}

func normalizeConfig(cfg Config) Config {
	if len(cfg.KeyMap.Left.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 4
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	if cfg.CodeTheme == "" {
		cfg.CodeTheme = "monokai"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.AI.Logger == nil {
		cfg.AI.Logger = cfg.Logger
	}
	if cfg.Palette.Logger == nil {
		cfg.Palette.Logger = cfg.Logger
	}
	if cfg.Ghost.Logger == nil {
		cfg.Ghost.Logger = cfg.Logger
	}
	return cfg
}
