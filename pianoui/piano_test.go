package pianoui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/recorder"
	"github.com/rapidmidiex/rmxpiano/rmxerr"
	"github.com/rapidmidiex/rmxpiano/vpiano"
)

func newModel(t *testing.T) (Model, *pianostate.Store) {
	t.Helper()
	store, err := pianostate.NewDefault()
	require.NoError(t, err)
	keys, err := vpiano.NewKeyboard(vpiano.DefaultFrom, vpiano.DefaultTo, keycode.Default())
	require.NoError(t, err)

	return New(Options{
		Store:    store,
		Keyboard: keys,
		Table:    keycode.Default(),
		Hold:     time.Millisecond,
	}), store
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestPressAndRelease(t *testing.T) {
	m, store := newModel(t)

	m, cmd := update(t, m, runeKey('z'))
	require.NotNil(t, cmd)
	pressed, _ := store.Get("C3")
	require.True(t, pressed)

	// The scheduled release lets go of the key.
	m, _ = update(t, m, cmd())
	pressed, _ = store.Get("C3")
	require.False(t, pressed)
	require.Empty(t, m.presses)
}

func TestRepeatedPressKeepsKeyDown(t *testing.T) {
	m, store := newModel(t)

	m, first := update(t, m, runeKey('v'))
	m, second := update(t, m, runeKey('v'))

	// The first release is stale.
	m, _ = update(t, m, first())
	pressed, _ := store.Get("D3")
	require.True(t, pressed)

	_, _ = update(t, m, second())
	pressed, _ = store.Get("D3")
	require.False(t, pressed)
}

func TestUnboundKeysAreIgnored(t *testing.T) {
	m, store := newModel(t)
	_, cmd := update(t, m, runeKey('~'))
	require.Nil(t, cmd)
	require.Empty(t, store.Pressed())
}

func TestReset(t *testing.T) {
	m, store := newModel(t)
	m, _ = update(t, m, runeKey('z'))
	m, _ = update(t, m, runeKey('c'))
	require.Len(t, store.Pressed(), 2)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, store.Pressed())
	require.Empty(t, m.presses)
}

func TestOctaveShift(t *testing.T) {
	m, store := newModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	from, to := m.Keyboard().Bounds()
	require.Equal(t, "C4", from)
	require.Equal(t, "E7", to)

	// The new keyboard is announced to the rest of the program.
	require.NotNil(t, cmd)
	kb, ok := cmd().(KeyboardMsg)
	require.True(t, ok)
	require.Equal(t, m.Keyboard(), kb.Keys)
	require.Zero(t, kb.Hold)

	m, _ = update(t, m, runeKey('z'))
	pressed, _ := store.Get("C4")
	require.True(t, pressed)

	// One more octave up leaves the piano, so nothing moves.
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.Nil(t, cmd)
	from, _ = m.Keyboard().Bounds()
	require.Equal(t, "C4", from)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	from, _ = m.Keyboard().Bounds()
	require.Equal(t, "C2", from)
}

func TestKeyboardMsg(t *testing.T) {
	m, store := newModel(t)
	keys, err := vpiano.NewKeyboard("A0", "C1", keycode.Default())
	require.NoError(t, err)

	m, _ = update(t, m, KeyboardMsg{Keys: keys, Table: keycode.Default()})
	m, _ = update(t, m, runeKey('z'))
	pressed, _ := store.Get("A0")
	require.True(t, pressed)
	require.Equal(t, time.Millisecond, m.hold)

	m, _ = update(t, m, KeyboardMsg{Keys: keys, Table: keycode.Default(), Hold: time.Second})
	require.Equal(t, time.Second, m.hold)
}

func TestView(t *testing.T) {
	m, _ := newModel(t)
	m, _ = update(t, m, runeKey('z'))

	view := m.View()
	require.Contains(t, view, "C3")
	require.Contains(t, view, "(z)")
	require.Contains(t, view, "C3..E6")
	require.Contains(t, view, "C3 130.8Hz")

	m, _ = update(t, m, rmxerr.ErrMsg{Err: errors.New("config: bad range")})
	require.Contains(t, m.View(), "config: bad range")
}

// stepClock advances by step on every call after the first.
type stepClock struct {
	t    time.Time
	step time.Duration
	used bool
}

func (c *stepClock) now() time.Time {
	if c.used {
		c.t = c.t.Add(c.step)
	}
	c.used = true
	return c.t
}

func newRecordingModel(t *testing.T) (Model, *pianostate.Store) {
	t.Helper()
	store, err := pianostate.NewDefault()
	require.NoError(t, err)
	keys, err := vpiano.NewKeyboard(vpiano.DefaultFrom, vpiano.DefaultTo, keycode.Default())
	require.NoError(t, err)

	c := &stepClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	return New(Options{
		Store:    store,
		Keyboard: keys,
		Table:    keycode.Default(),
		Hold:     time.Millisecond,
		Recorder: recorder.New(store, c.now),
	}), store
}

func TestRecordAndPlay(t *testing.T) {
	m, store := newRecordingModel(t)

	// Nothing recorded yet.
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.Nil(t, cmd)
	require.False(t, m.playing)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Contains(t, m.View(), "REC")

	m, release := update(t, m, runeKey('z'))
	m, _ = update(t, m, release())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotContains(t, m.View(), "REC")
	require.Len(t, m.take, 2)
	require.Equal(t, 10*time.Millisecond, m.take.Delay(1))

	// The first event plays right away, the next one after its gap.
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	pressed, _ := store.Get("C3")
	require.True(t, pressed)
	require.Contains(t, m.View(), "PLAY")

	m, cmd = update(t, m, cmd())
	require.Nil(t, cmd)
	pressed, _ = store.Get("C3")
	require.False(t, pressed)
	require.False(t, m.playing)
}

func TestResetCancelsPlayback(t *testing.T) {
	m, store := newRecordingModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m, release := update(t, m, runeKey('c'))
	m, _ = update(t, m, release())
	m, _ = update(t, m, runeKey('v'))

	// Play stops the recording first.
	m, next := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.False(t, m.rec.Recording())
	require.Len(t, m.take, 3)
	require.NotNil(t, next)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Empty(t, store.Pressed())

	// The pending step belongs to the cancelled playback.
	m, cmd := update(t, m, next())
	require.Nil(t, cmd)
	require.Empty(t, store.Pressed())
	require.False(t, m.playing)
}
