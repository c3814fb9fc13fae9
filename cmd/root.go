package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/folio/internal/app"
	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/engine"
	"github.com/zjrosen/folio/internal/flags"
	"github.com/zjrosen/folio/internal/infrastructure/sqlite"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/paths"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/shared"
	"github.com/zjrosen/folio/internal/tracing"
)

func init() {
	// Query the terminal background before the program owns stdin, so the
	// OSC 11 reply does not show up as typed input.
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".folio/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "folio",
	Short:   "A modal terminal ui for your books and papers",
	Long:    `folio is a keyboard-driven library manager with vim-style motions, operators, registers, macros and undo.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/folio/config.yaml)")
	rootCmd.PersistentFlags().String("db", "",
		"path to the library database")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug.log (also enabled by FOLIO_DEBUG)")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable reloading when the database changes on disk")

	_ = viper.BindPFlag("library_path", rootCmd.PersistentFlags().Lookup("db"))
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("library_path", d.LibraryPath)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("auto_refresh_debounce", d.AutoRefreshDebounce)
	v.SetDefault("ui.viewport_height", d.UI.ViewportHeight)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.show_sidebar", d.UI.ShowSidebar)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("engine.undo_limit", d.Engine.UndoLimit)
	v.SetDefault("engine.jump_list_size", d.Engine.JumpListSize)
	v.SetDefault("engine.group_by", d.Engine.GroupBy)
	v.SetDefault("engine.clipboard", d.Engine.Clipboard)
	v.SetDefault("theme.accent", d.Theme.Accent)
	v.SetDefault("theme.muted", d.Theme.Muted)
	v.SetDefault("theme.selected", d.Theme.Selected)
	v.SetDefault("theme.error", d.Theme.Error)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return localConfigPath
	}
	return filepath.Join(home, ".config", "folio", "config.yaml")
}

func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .folio/config.yaml (current directory)
		// 2. ~/.config/folio/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(filepath.Dir(userConfigPath()))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			path := userConfigPath()
			if writeErr := config.WriteDefaultConfig(path); writeErr == nil {
				viper.SetConfigFile(path)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configPath is where :library persists last_library.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return userConfigPath()
}

// initLogging opens debug.log when debugging was requested. The returned
// cleanup is never nil.
func initLogging() (func(), error) {
	if !log.DebugRequested(debugFlag) {
		return func() {}, nil
	}
	path := os.Getenv("FOLIO_LOG")
	if path == "" {
		path = "debug.log"
	}
	cleanup, err := log.Init(path)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "folio starting", "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// openLibrary opens the database and wraps it in the item cache.
func openLibrary(c config.Config, provider *tracing.Provider) (*sqlite.DB, *library.CachedStore, error) {
	path := paths.ResolveLibraryPath(c.LibraryPath)
	db, err := sqlite.NewDB(path, sqlite.WithTracer(provider.Tracer()))
	if err != nil {
		return nil, nil, fmt.Errorf("opening library %s: %w", path, err)
	}
	return db, library.NewCachedStore(db.ItemStore(), false), nil
}

func newTracing(c config.Config) (*tracing.Provider, error) {
	tc := c.Tracing
	if tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	tc.FilePath = paths.ExpandHome(tc.FilePath)
	provider, err := tracing.NewProvider(tc)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, nil
}

// engineOptions maps the config file onto the engine.
func engineOptions(c config.Config, provider *tracing.Provider, broker *pubsub.Broker[engine.Event]) []engine.Option {
	var clip shared.Clipboard = shared.NoClipboard{}
	if c.Engine.Clipboard {
		clip = shared.SystemClipboard{}
	}
	opts := []engine.Option{
		engine.WithConfig(engine.Config{
			ViewportHeight: c.UI.ViewportHeight,
			JumpListSize:   c.Engine.JumpListSize,
			UndoLimit:      c.Engine.UndoLimit,
			GroupBy:        engine.GroupBy(c.Engine.GroupBy),
		}),
		engine.WithClipboard(clip),
		engine.WithTracer(provider.Tracer()),
		engine.WithFlags(flags.New(c.Flags)),
	}
	if broker != nil {
		opts = append(opts, engine.WithBroker(broker))
	}
	if c.LastLibrary != "" {
		opts = append(opts, engine.WithFilter(library.ListOptions{Library: c.LastLibrary}))
	}
	return opts
}

func runApp(cmd *cobra.Command, _ []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// The watcher needs the real file name.
	cfg.LibraryPath = paths.ResolveLibraryPath(cfg.LibraryPath)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	ctx := context.Background()
	provider, err := newTracing(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	db, store, err := openLibrary(cfg, provider)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	broker := pubsub.NewBroker[engine.Event]()
	defer broker.Close()

	eng := engine.New(store, engineOptions(cfg, provider, broker)...)
	if err := eng.Reload(ctx); err != nil {
		return fmt.Errorf("loading library: %w", err)
	}

	model := app.New(app.Options{
		Engine:     eng,
		Broker:     broker,
		Config:     cfg,
		ConfigPath: configPath(),
		Cache:      store,
		Debug:      log.DebugRequested(debugFlag),
	})
	defer model.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if flags.New(cfg.Flags).Enabled(flags.FlagMouse) {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
