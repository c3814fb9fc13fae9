// Package app contains the root application model: a thin bubbletea shell
// that feeds keys to the command engine and draws its state.
package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/folio/internal/config"
	"github.com/zjrosen/folio/internal/engine"
	"github.com/zjrosen/folio/internal/keys"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/watcher"
)

// Invalidator drops cached items after the database changed on disk.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// libraryChangedMsg is sent when the watcher sees an external write.
type libraryChangedMsg struct{}

// Options carries what the model needs from the command that starts it.
type Options struct {
	Engine *engine.Engine
	// Broker is the engine's event broker. Open, library and quit events
	// are handled here.
	Broker     *pubsub.Broker[engine.Event]
	Config     config.Config
	ConfigPath string
	// Cache is invalidated before reloading on external changes. Optional.
	Cache Invalidator
	// Opener shows attached files. Defaults to SystemOpener.
	Opener Opener
	// Debug shows the latest log line in the status bar.
	Debug bool
}

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine     *engine.Engine
	cfg        config.Config
	configPath string
	cache      Invalidator
	open       Opener

	width  int
	height int

	styles    styles
	help      help.Model
	keys      keys.KeyMap
	helpCache *helpCache

	events  *pubsub.Listener[engine.Event]
	watcher *watcher.Watcher
	changes <-chan struct{}

	debug   bool
	logs    *log.LogListener
	lastLog string

	// message is an app-level error shown instead of the engine status
	// until the engine reports something newer.
	message string
}

// New creates the model. The engine must already be loaded.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	zone.NewGlobal()

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		engine:     opts.Engine,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		cache:      opts.Cache,
		open:       opts.Opener,
		width:      80,
		height:     24,
		styles:     newStyles(opts.Config.Theme),
		help:       help.New(),
		keys:       keys.DefaultKeyMap(),
		helpCache:  &helpCache{},
		debug:      opts.Debug,
	}
	if m.open == nil {
		m.open = SystemOpener
	}
	if opts.Broker != nil {
		m.events = pubsub.NewListener(ctx, opts.Broker,
			pubsub.StatusEvent, pubsub.OpenEvent, pubsub.LibraryEvent, pubsub.QuitEvent,
			pubsub.CreatedEvent, pubsub.UpdatedEvent, pubsub.DeletedEvent)
	}
	if opts.Debug {
		m.logs = log.NewListener(ctx)
	}

	// The app works without auto-refresh, so watcher failures only log.
	if opts.Config.AutoRefresh && isFile(opts.Config.LibraryPath) {
		wcfg := watcher.DefaultConfig(opts.Config.LibraryPath)
		if opts.Config.AutoRefreshDebounce > 0 {
			wcfg.DebounceDur = opts.Config.AutoRefreshDebounce
		}
		w, err := watcher.New(wcfg)
		if err != nil {
			log.ErrorErr(log.CatWatcher, "watcher init failed", err)
		} else if ch, err := w.Start(); err != nil {
			log.ErrorErr(log.CatWatcher, "watcher start failed", err)
			_ = w.Stop()
		} else {
			m.watcher = w
			m.changes = ch
		}
	}

	m.resize(m.width, m.height)
	return m
}

func isFile(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}

// Close stops the watcher and the listeners.
func (m Model) Close() {
	if m.watcher != nil {
		_ = m.watcher.Stop()
	}
	m.cancel()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.events != nil {
		cmds = append(cmds, m.events.Listen())
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return libraryChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, m.engine.Handle(m.ctx, msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if row, ok := m.rowAt(msg); ok {
			m.engine.ClickRow(row)
		}
		return m, nil

	case pubsub.Event[engine.Event]:
		cmd := m.handleEngineEvent(msg)
		return m, tea.Batch(cmd, m.events.Listen())

	case libraryChangedMsg:
		m.reloadFromDisk()
		return m, waitForChange(m.changes)

	case openedMsg:
		if msg.err != nil {
			m.message = "Failed to open: " + msg.err.Error()
		}
		return m, nil

	case log.LogEvent:
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()
	}
	return m, nil
}

func (m *Model) handleEngineEvent(ev pubsub.Event[engine.Event]) tea.Cmd {
	switch ev.Type {
	case pubsub.StatusEvent:
		m.message = ""
	case pubsub.OpenEvent:
		return openFileCmd(m.open, ev.Payload.Item.FilePath)
	case pubsub.LibraryEvent:
		if m.configPath == "" {
			return nil
		}
		if err := config.SaveLastLibrary(m.configPath, ev.Payload.Library); err != nil {
			log.ErrorErr(log.CatConfig, "failed to save last library", err, "library", ev.Payload.Library)
			m.message = "Failed to save config: " + err.Error()
		}
	case pubsub.QuitEvent:
		log.Info(log.CatUI, "quit requested")
	case pubsub.CreatedEvent, pubsub.UpdatedEvent, pubsub.DeletedEvent:
		log.Debug(log.CatUI, "library mutated", "type", ev.Type, "count", ev.Payload.Count)
	}
	return nil
}

// reloadFromDisk picks up writes made by another process.
func (m *Model) reloadFromDisk() {
	if m.cache != nil {
		if err := m.cache.Invalidate(m.ctx); err != nil {
			log.ErrorErr(log.CatCache, "invalidate failed", err)
		}
	}
	if err := m.engine.Reload(m.ctx); err != nil {
		log.ErrorErr(log.CatUI, "reload after change failed", err)
		m.message = "Failed to reload: " + err.Error()
		return
	}
	log.Debug(log.CatUI, "reloaded after external change", "items", len(m.engine.Items()))
}

// resize updates the layout and tells the engine how many rows it shows.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.engine.SetViewportHeight(m.listRows())
}
