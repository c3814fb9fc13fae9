package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.True(t, cfg.AutoRefresh)
	require.Equal(t, 300*time.Millisecond, cfg.AutoRefreshDebounce)
	require.Equal(t, 20, cfg.UI.ViewportHeight)
	require.Equal(t, 1000, cfg.Engine.UndoLimit)
	require.Equal(t, 100, cfg.Engine.JumpListSize)
	require.Equal(t, "letter", cfg.Engine.GroupBy)
	require.False(t, cfg.Tracing.Enabled)
	require.NotEmpty(t, cfg.LibraryPath)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero viewport",
			mutate:  func(c *Config) { c.UI.ViewportHeight = 0 },
			wantErr: "ui.viewport_height must be positive",
		},
		{
			name:    "unknown group_by",
			mutate:  func(c *Config) { c.Engine.GroupBy = "author" },
			wantErr: `engine.group_by must be "letter" or "status", got "author"`,
		},
		{
			name:    "negative undo limit",
			mutate:  func(c *Config) { c.Engine.UndoLimit = -1 },
			wantErr: "engine.undo_limit",
		},
		{
			name:    "bad markdown style",
			mutate:  func(c *Config) { c.UI.MarkdownStyle = "sepia" },
			wantErr: "ui.markdown_style",
		},
		{
			name:    "bad color",
			mutate:  func(c *Config) { c.Theme.Accent = "purple" },
			wantErr: `theme.accent: invalid hex color "purple"`,
		},
		{
			name: "bad exporter",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "jaeger"
			},
			wantErr: "tracing.exporter",
		},
		{
			name: "sample rate out of range",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 1.5
			},
			wantErr: "tracing.sample_rate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_StatusGrouping(t *testing.T) {
	cfg := Defaults()
	cfg.Engine.GroupBy = "status"
	require.NoError(t, Validate(cfg))
}

func TestDefaultConfigTemplate_LoadsAsDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.AutoRefresh, cfg.AutoRefresh)
	require.Equal(t, want.AutoRefreshDebounce, cfg.AutoRefreshDebounce)
	require.Equal(t, want.UI, cfg.UI)
	require.Equal(t, want.Engine, cfg.Engine)
	require.NoError(t, Validate(cfg))
}

func TestConfig_UnmarshalOverrides(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yaml := `
library_path: /tmp/lib.db
engine:
  group_by: status
  undo_limit: 50
flags:
  fuzzy-search: true
last_library: papers
`
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	require.Equal(t, "/tmp/lib.db", cfg.LibraryPath)
	require.Equal(t, "status", cfg.Engine.GroupBy)
	require.Equal(t, 50, cfg.Engine.UndoLimit)
	require.Equal(t, 100, cfg.Engine.JumpListSize, "unset keys keep their defaults")
	require.True(t, cfg.Flags["fuzzy-search"])
	require.Equal(t, "papers", cfg.LastLibrary)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
