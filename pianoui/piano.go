package pianoui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/rapidmidiex/rmxpiano/keymap"
	"github.com/rapidmidiex/rmxpiano/music"
	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/recorder"
	"github.com/rapidmidiex/rmxpiano/rmxerr"
	"github.com/rapidmidiex/rmxpiano/styles"
	"github.com/rapidmidiex/rmxpiano/vpiano"
)

var docStyle = styles.DocStyle

type (
	// StateChangedMsg is sent whenever the store reports a key change.
	StateChangedMsg pianostate.Change

	// KeyboardMsg replaces the on-screen keyboard, ex: after a config reload
	// or an octave shift. A zero Hold keeps the current one.
	KeyboardMsg struct {
		Keys  vpiano.Keys
		Table keycode.Table
		Hold  time.Duration
	}

	// releaseMsg lets go of a key once its hold time is up. Only the release
	// matching the latest press of the key is applied.
	releaseMsg struct {
		name string
		seq  int
	}

	// playMsg applies event index of the take being played. Messages from
	// a cancelled playback carry a stale id and are dropped.
	playMsg struct {
		id    int
		index int
	}

	Options struct {
		Store    *pianostate.Store
		Keyboard vpiano.Keys
		Table    keycode.Table
		// How long a key stays down after being hit.
		Hold time.Duration
		// Optional, one is created for Store when nil.
		Recorder *recorder.Recorder
		Log      *zap.Logger
	}

	Model struct {
		store    *pianostate.Store
		keyboard vpiano.Keys
		table    keycode.Table
		// Terminal key -> piano key. {"z": Key{"C3", ...}}
		bindings vpiano.KeyBindingMap
		hold     time.Duration

		// Latest press sequence number per note name.
		presses map[string]int
		seq     int

		rec *recorder.Recorder
		// Playback state. playID changes whenever playback starts or is
		// cancelled.
		take    recorder.Take
		playID  int
		playing bool

		help help.Model
		err  error
		log  *zap.Logger
	}
)

func New(o Options) Model {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	rec := o.Recorder
	if rec == nil {
		rec = recorder.New(o.Store, nil)
	}
	return Model{
		store:    o.Store,
		keyboard: o.Keyboard,
		table:    o.Table,
		bindings: o.Keyboard.ToBindingMap(),
		hold:     o.Hold,
		presses:  make(map[string]int),
		rec:      rec,
		help:     help.New(),
		log:      log,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.Reset):
			m.stopPlayback()
			m.store.Reset()
			m.presses = make(map[string]int)
			m.log.Debug("reset")
			return m, nil
		case key.Matches(msg, keymap.DefaultMapping.Record):
			return m.toggleRecord()
		case key.Matches(msg, keymap.DefaultMapping.Play):
			return m.play()
		case key.Matches(msg, keymap.DefaultMapping.OctaveDown):
			return m.shift(-12)
		case key.Matches(msg, keymap.DefaultMapping.OctaveUp):
			return m.shift(12)
		case key.Matches(msg, keymap.DefaultMapping.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		pk, ok := m.bindings[msg.String()]
		if !ok {
			return m, nil
		}
		return m.press(pk)

	case releaseMsg:
		if m.presses[msg.name] != msg.seq {
			// Pressed again since; that press schedules its own release.
			return m, nil
		}
		delete(m.presses, msg.name)
		if err := m.store.Release(msg.name); err != nil {
			m.err = err
		}

	case playMsg:
		if !m.playing || msg.id != m.playID {
			return m, nil
		}
		return m.playFrom(msg.index)

	case KeyboardMsg:
		m.keyboard = msg.Keys
		m.table = msg.Table
		m.bindings = msg.Keys.ToBindingMap()
		if msg.Hold > 0 {
			m.hold = msg.Hold
		}
		m.err = nil
		from, to := msg.Keys.Bounds()
		m.log.Info("keyboard changed", zap.String("from", from), zap.String("to", to), zap.Duration("hold", m.hold))

	case StateChangedMsg:
		// The store is the source of truth; View reads it directly. This
		// message only triggers a redraw for changes made elsewhere.
		m.log.Debug("state changed", zap.String("note", msg.Name), zap.Bool("pressed", msg.Pressed))

	case rmxerr.ErrMsg:
		m.err = msg
		m.log.Warn("error", zap.Error(msg.Err))
	}

	return m, nil
}

func (m Model) press(pk vpiano.Key) (tea.Model, tea.Cmd) {
	if err := m.store.Press(pk.Name); err != nil {
		m.err = err
		return m, nil
	}
	m.seq++
	m.presses[pk.Name] = m.seq
	m.log.Debug("press", zap.String("note", pk.Name), zap.String("key", pk.KeyBinding))

	rel := releaseMsg{name: pk.Name, seq: m.seq}
	return m, tea.Tick(m.hold, func(time.Time) tea.Msg {
		return rel
	})
}

func (m Model) shift(semitones int) (tea.Model, tea.Cmd) {
	keys, err := m.keyboard.Shift(semitones, m.table)
	if err != nil {
		// Already at the edge of the piano.
		m.log.Debug("shift refused", zap.Error(err))
		return m, nil
	}
	m.keyboard = keys
	m.bindings = keys.ToBindingMap()

	// Let the rest of the program know, ex: the state feed.
	kb := KeyboardMsg{Keys: keys, Table: m.table}
	return m, func() tea.Msg { return kb }
}

// toggleRecord starts a recording, or stops the one in progress.
func (m Model) toggleRecord() (tea.Model, tea.Cmd) {
	if m.rec.Recording() {
		m.take = m.rec.Stop()
		m.log.Info("recording stopped", zap.Int("events", len(m.take)), zap.Duration("length", m.take.Duration()))
		return m, nil
	}
	m.stopPlayback()
	m.rec.Start()
	m.log.Info("recording started")
	return m, nil
}

// play replays the last take through the store, from the start.
func (m Model) play() (tea.Model, tea.Cmd) {
	if m.rec.Recording() {
		m.take = m.rec.Stop()
	} else {
		m.take = m.rec.Take()
	}
	if len(m.take) == 0 {
		return m, nil
	}
	m.stopPlayback()
	m.playing = true
	m.log.Info("playback started", zap.Int("events", len(m.take)))
	return m.playFrom(0)
}

// playFrom applies event i and schedules the next one after the recorded
// gap.
func (m Model) playFrom(i int) (tea.Model, tea.Cmd) {
	e := m.take[i]
	if err := m.store.Set(e.Name, e.Pressed); err != nil {
		m.err = err
	}

	next := i + 1
	if next >= len(m.take) {
		m.playing = false
		m.log.Info("playback finished")
		return m, nil
	}
	msg := playMsg{id: m.playID, index: next}
	return m, tea.Tick(m.take.Delay(next), func(time.Time) tea.Msg {
		return msg
	})
}

func (m *Model) stopPlayback() {
	m.playID++
	m.playing = false
}

// Keyboard returns the keys currently on screen.
func (m Model) Keyboard() vpiano.Keys {
	return m.keyboard
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	if physicalWidth > 0 {
		docStyle = docStyle.MaxWidth(physicalWidth)
	}

	doc.WriteString(m.renderKeyboard() + "\n\n")
	doc.WriteString(m.renderStatus() + "\n")

	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()) + "\n")
	}

	doc.WriteString(styles.HelpMenu.Render(m.help.View(keymap.DefaultMapping)))
	return docStyle.Render(doc.String())
}

// renderKeyboard draws the keys in rows of one octave so narrow terminals
// still fit.
func (m Model) renderKeyboard() string {
	rows := make([]string, 0)
	row := make([]string, 0, 12)
	for i, k := range m.keyboard {
		row = append(row, m.renderKey(k))
		if len(row) == 12 || i == len(m.keyboard)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = row[:0]
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderKey(k vpiano.Key) string {
	binding := k.KeyBinding
	if binding == "" {
		binding = " "
	}
	label := k.Name + "\n\n" + "(" + binding + ")"

	pressed, _ := m.store.Get(k.Name)
	switch {
	case pressed:
		return styles.PressedKey.Render(label)
	case k.IsAccidental:
		return styles.BlackKey.Render(label)
	default:
		return styles.WhiteKey.Render(label)
	}
}

func (m Model) renderStatus() string {
	from, to := m.keyboard.Bounds()
	status := styles.StatusStyle.Render(fmt.Sprintf("%s..%s", from, to))

	parts := []string{status}
	switch {
	case m.rec.Recording():
		parts = append(parts, styles.RecordingStyle.Render("REC"))
	case m.playing:
		parts = append(parts, styles.PlayingStyle.Render("PLAY"))
	}

	pressed := m.store.Pressed()
	text := "no keys down"
	if len(pressed) > 0 {
		notes := make([]string, 0, len(pressed))
		for _, name := range pressed {
			notes = append(notes, noteLabel(name))
		}
		text = strings.Join(notes, " ")
	}
	parts = append(parts, styles.StatusText.Render(text))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// noteLabel renders a pressed note with its pitch, ex: "A4 440.0Hz".
func noteLabel(name string) string {
	p, err := music.ParsePitch(name)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s %.1fHz", name, p.Freq())
}
