// Package config provides configuration types and defaults for folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/tracing"
)

// Config holds all configuration options for folio.
type Config struct {
	// LibraryPath is the sqlite database file.
	LibraryPath         string          `mapstructure:"library_path"`
	AutoRefresh         bool            `mapstructure:"auto_refresh"`
	AutoRefreshDebounce time.Duration   `mapstructure:"auto_refresh_debounce"`
	UI                  UIConfig        `mapstructure:"ui"`
	Engine              EngineConfig    `mapstructure:"engine"`
	Theme               ThemeConfig     `mapstructure:"theme"`
	Tracing             tracing.Config  `mapstructure:"tracing"`
	Flags               map[string]bool `mapstructure:"flags"`
	// LastLibrary is written by :library and restored on start.
	LastLibrary string `mapstructure:"last_library"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	// ViewportHeight is the number of list rows H/M/L and page motions
	// work against. The app shrinks it to the terminal when smaller.
	ViewportHeight int    `mapstructure:"viewport_height"`
	ShowStatusBar  bool   `mapstructure:"show_status_bar"`
	ShowSidebar    bool   `mapstructure:"show_sidebar"`
	MarkdownStyle  string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// EngineConfig holds the command engine tunables.
type EngineConfig struct {
	UndoLimit    int    `mapstructure:"undo_limit"`
	JumpListSize int    `mapstructure:"jump_list_size"`
	GroupBy      string `mapstructure:"group_by"` // "letter" (default) or "status"
	// Clipboard links the + and * registers to the system clipboard.
	Clipboard bool `mapstructure:"clipboard"`
}

// ThemeConfig holds the colors used by the list view.
type ThemeConfig struct {
	Accent   string `mapstructure:"accent"`
	Muted    string `mapstructure:"muted"`
	Selected string `mapstructure:"selected"`
	Error    string `mapstructure:"error"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		LibraryPath:         DefaultLibraryPath(),
		AutoRefresh:         true,
		AutoRefreshDebounce: 300 * time.Millisecond,
		UI: UIConfig{
			ViewportHeight: 20,
			ShowStatusBar:  true,
			ShowSidebar:    true,
			MarkdownStyle:  "dark",
		},
		Engine: EngineConfig{
			UndoLimit:    1000,
			JumpListSize: 100,
			GroupBy:      "letter",
			Clipboard:    true,
		},
		Theme: ThemeConfig{
			Accent:   "#7D56F4",
			Muted:    "#6C6C6C",
			Selected: "#3C3C5C",
			Error:    "#FF5F87",
		},
		Tracing: tracing.DefaultConfig(),
		Flags:   map[string]bool{},
	}
}

// DefaultLibraryPath returns ~/.local/share/folio/library.db, or a path
// in the working directory when the home directory is unknown.
func DefaultLibraryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.db"
	}
	return filepath.Join(home, ".local", "share", "folio", "library.db")
}

// DefaultTracesFilePath returns the trace file location under the config
// directory.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "folio", "traces", "traces.jsonl")
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate checks the configuration for values the program cannot use.
func Validate(cfg Config) error {
	if cfg.UI.ViewportHeight <= 0 {
		return fmt.Errorf("ui.viewport_height must be positive, got %d", cfg.UI.ViewportHeight)
	}
	switch cfg.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", cfg.UI.MarkdownStyle)
	}
	if err := ValidateEngine(cfg.Engine); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateEngine checks the engine section.
func ValidateEngine(e EngineConfig) error {
	switch e.GroupBy {
	case "", "letter", "status":
	default:
		return fmt.Errorf("engine.group_by must be \"letter\" or \"status\", got %q", e.GroupBy)
	}
	if e.UndoLimit < 0 {
		return fmt.Errorf("engine.undo_limit must not be negative, got %d", e.UndoLimit)
	}
	if e.JumpListSize < 0 {
		return fmt.Errorf("engine.jump_list_size must not be negative, got %d", e.JumpListSize)
	}
	return nil
}

// ValidateTheme checks that every set color is a #RRGGBB hex value.
func ValidateTheme(t ThemeConfig) error {
	for name, value := range map[string]string{
		"accent":   t.Accent,
		"muted":    t.Muted,
		"selected": t.Selected,
		"error":    t.Error,
	} {
		if value != "" && !hexColor.MatchString(value) {
			return fmt.Errorf("theme.%s: invalid hex color %q", name, value)
		}
	}
	return nil
}

// ValidateTracing checks the tracing section.
func ValidateTracing(t tracing.Config) error {
	if !t.Enabled {
		return nil
	}
	switch t.Exporter {
	case "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp; got %q", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", t.SampleRate)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# folio configuration

# Path to the library database (default: ~/.local/share/folio/library.db)
# library_path: /path/to/library.db

# Reload the list when the database changes on disk
auto_refresh: true
auto_refresh_debounce: 300ms

# UI settings
ui:
  viewport_height: 20     # List rows used by H/M/L and page motions
  show_status_bar: true   # Show status bar at bottom
  show_sidebar: true      # Show libraries and tags on the left
  # markdown_style: dark  # Help rendering style: "dark" (default) or "light"

# Command engine
engine:
  undo_limit: 1000        # Undo entries kept per session
  jump_list_size: 100     # Positions kept for ctrl+o / ctrl+i
  group_by: letter        # { and } jump between groups: letter or status
  clipboard: true         # Link the + and * registers to the system clipboard

# Theme colors (#RRGGBB)
# theme:
#   accent: "#7D56F4"
#   muted: "#6C6C6C"
#   selected: "#3C3C5C"
#   error: "#FF5F87"

# Tracing of line commands, undo and store access
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/folio/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
# flags:
#   fuzzy-search: true   # n/N and / use fuzzy matching instead of substrings
#   mouse: true          # Click to move the cursor
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
