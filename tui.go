package rmxpiano

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rapidmidiex/rmxpiano/config"
	"github.com/rapidmidiex/rmxpiano/feed"
	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/rapidmidiex/rmxpiano/keymap"
	"github.com/rapidmidiex/rmxpiano/logger"
	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/pianoui"
	"github.com/rapidmidiex/rmxpiano/rmxerr"
	"github.com/rapidmidiex/rmxpiano/vpiano"
)

// ********
// Code heavily based on "Project Journal"
// https://github.com/bashbunni/pjs
// https://www.youtube.com/watch?v=uJ2egAkSkjg&t=319s
// ********

type (
	// configChangedMsg is sent when the config file is written.
	configChangedMsg struct{}

	mainModel struct {
		piano      tea.Model
		configPath string
		feed       *feed.Server
		changes    <-chan struct{}
		log        *zap.Logger
	}
)

func newModel(piano tea.Model, configPath string, srv *feed.Server, changes <-chan struct{}, log *zap.Logger) mainModel {
	return mainModel{
		piano:      piano,
		configPath: configPath,
		feed:       srv,
		changes:    changes,
		log:        log,
	}
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(
		m.piano.Init(),
		m.waitForConfigChange(),
	)
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		// Ctrl+c exits. Even with short running programs it's good to have
		// a quit key, just incase your logic is off. Users will be very
		// annoyed if they can't exit.
		case key.Matches(msg, keymap.DefaultMapping.Quit):
			return m, tea.Quit
		}

	case configChangedMsg:
		cmds = append(cmds, m.reloadKeyboard(), m.waitForConfigChange())

	case pianoui.KeyboardMsg:
		// From a reload or from the piano itself after an octave shift.
		if m.feed != nil {
			m.feed.SetKeyboard(msg.Keys)
		}
	}

	m.piano, cmd = m.piano.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m mainModel) View() string {
	return m.piano.View()
}

// waitForConfigChange blocks until the config watcher fires.
func (m mainModel) waitForConfigChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// reloadKeyboard re-reads the config file and rebuilds the on-screen keys
// and their hold time. The store keeps its A0..C8 domain.
func (m mainModel) reloadKeyboard() tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(m.configPath)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("reload config: %w", err)}
		}
		keys, table, err := loadKeyboard(cfg.Piano)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("reload config: %w", err)}
		}
		return pianoui.KeyboardMsg{Keys: keys, Table: table, Hold: cfg.Piano.Hold}
	}
}

func loadKeyboard(c config.Piano) (vpiano.Keys, keycode.Table, error) {
	table := keycode.Default()
	if c.Layout != "" {
		t, err := keycode.LoadTableFile(c.Layout)
		if err != nil {
			return nil, nil, fmt.Errorf("layout %s: %w", c.Layout, err)
		}
		table = t
	}
	keys, err := vpiano.NewKeyboard(c.From, c.To, table)
	if err != nil {
		return nil, nil, err
	}
	return keys, table, nil
}

// Run starts the piano. configPath may be empty to use the defaults.
func Run(configPath string, cfg config.Config) error {
	log, closeLog, err := logger.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	store, err := pianostate.NewDefault()
	if err != nil {
		return err
	}

	keys, table, err := loadKeyboard(cfg.Piano)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var srv *feed.Server
	if cfg.Feed.Addr != "" {
		srv = feed.NewServer(store, keys, log)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Feed.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("feed stopped", zap.Error(err))
			}
		}()
	}

	var changes <-chan struct{}
	if configPath != "" {
		changes = config.Watch(ctx, configPath, log)
	}

	piano := pianoui.New(pianoui.Options{
		Store:    store,
		Keyboard: keys,
		Table:    table,
		Hold:     cfg.Piano.Hold,
		Log:      log,
	})

	p := tea.NewProgram(newModel(piano, configPath, srv, changes, log), tea.WithAltScreen())

	// Send blocks until the program reads the message, and the store
	// notifies from inside Update, so hand it off.
	unsubscribe := store.Subscribe(func(c pianostate.Change) {
		go p.Send(pianoui.StateChangedMsg(c))
	})
	defer unsubscribe()

	log.Info("piano started", zap.Int("keys", store.Len()), zap.Int("onScreen", len(keys)))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// Main runs the piano and exits the process on failure.
func Main(configPath string, cfg config.Config) {
	if err := Run(configPath, cfg); err != nil {
		bail(err)
	}
}

func bail(err error) {
	if err != nil {
		fmt.Printf("Uh oh, there was an error: %v\n", err)
		os.Exit(1)
	}
}
