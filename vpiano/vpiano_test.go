package vpiano_test

import (
	"testing"

	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/rapidmidiex/rmxpiano/music"
	"github.com/rapidmidiex/rmxpiano/vpiano"
	"github.com/stretchr/testify/require"
)

func TestMakeKeys(t *testing.T) {
	got, err := vpiano.MakeKeys("C4", "F4")
	require.NoError(t, err)
	want := vpiano.Keys{
		{MIDI: 60, Name: "C4", IsAccidental: false},
		{MIDI: 61, Name: "C#4", IsAccidental: true},
		{MIDI: 62, Name: "D4", IsAccidental: false},
		{MIDI: 63, Name: "D#4", IsAccidental: true},
		{MIDI: 64, Name: "E4", IsAccidental: false},
	}
	require.Equal(t, want, got)

	_, err = vpiano.MakeKeys("F4", "C4")
	require.ErrorIs(t, err, music.ErrUnsupportedDirection)
}

func TestWithKeyCodes(t *testing.T) {
	keys, err := vpiano.MakeKeys("C4", "D4")
	require.NoError(t, err)
	keys = append(keys, vpiano.Key{Name: "custom", KeyCode: keycode.Mapped(13), KeyBinding: "enter"})

	got, err := keys.WithKeyCodes(keycode.Default())
	require.NoError(t, err)

	want := vpiano.Keys{
		{MIDI: 60, Name: "C4", KeyCode: keycode.Mapped(90), KeyBinding: "z"},
		{MIDI: 61, Name: "C#4", IsAccidental: true, KeyCode: keycode.Mapped(67), KeyBinding: "c"},
		// table fields win
		{Name: "custom", KeyCode: keycode.Mapped(86), KeyBinding: "v"},
	}
	require.Equal(t, want, got)

	// Input is left alone.
	require.Equal(t, keycode.Entry{}, keys[0].KeyCode)
	require.Equal(t, "enter", keys[2].KeyBinding)
}

func TestNewKeyboard(t *testing.T) {
	t.Run("default keyboard uses every table slot", func(t *testing.T) {
		keys, err := vpiano.NewKeyboard(vpiano.DefaultFrom, vpiano.DefaultTo, keycode.Default())
		require.NoError(t, err)
		require.Len(t, keys, 40)
		require.Equal(t, "C3", keys[0].Name)
		require.Equal(t, "z", keys[0].KeyBinding)
		require.Equal(t, "D#6", keys[39].Name)
		require.False(t, keys[39].KeyCode.Mapped)

		bindings := keys.ToBindingMap()
		require.Len(t, bindings, 39)
		require.Equal(t, "C#3", bindings["c"].Name)
		require.Equal(t, "D3", bindings["v"].Name)
		require.Equal(t, "D6", bindings["/"].Name)
	})

	t.Run("too many keys for the table", func(t *testing.T) {
		_, err := vpiano.NewKeyboard("C2", "C6", keycode.Default())
		require.ErrorIs(t, err, keycode.ErrTableOverflow)
	})

	t.Run("outside the piano", func(t *testing.T) {
		_, err := vpiano.NewKeyboard("C0", "C1", keycode.Default())
		require.ErrorIs(t, err, vpiano.ErrOutOfRange)
		_, err = vpiano.NewKeyboard("A7", "E8", keycode.Default())
		require.ErrorIs(t, err, vpiano.ErrOutOfRange)
	})
}

func TestShift(t *testing.T) {
	keys, err := vpiano.NewKeyboard("C3", "E6", keycode.Default())
	require.NoError(t, err)

	up, err := keys.Shift(12, keycode.Default())
	require.NoError(t, err)
	from, to := up.Bounds()
	require.Equal(t, "C4", from)
	require.Equal(t, "E7", to)
	require.Equal(t, "z", up[0].KeyBinding)

	_, err = up.Shift(12, keycode.Default())
	require.ErrorIs(t, err, vpiano.ErrOutOfRange)
}

func TestInRange(t *testing.T) {
	require.False(t, vpiano.InRange(20))
	require.True(t, vpiano.InRange(21))
	require.True(t, vpiano.InRange(107))
	require.False(t, vpiano.InRange(108))
}
