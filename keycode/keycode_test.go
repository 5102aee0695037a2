package keycode_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/stretchr/testify/require"
)

type label struct {
	Name string
}

func TestDefault(t *testing.T) {
	table := keycode.Default()
	require.Len(t, table, 40)
	require.Equal(t, keycode.Mapped(90), table[0])
	require.Equal(t, keycode.Mapped(188), table[38])
	require.False(t, table[39].Mapped)

	// Callers get a copy.
	table[0] = keycode.Unmapped
	require.Equal(t, keycode.Mapped(90), keycode.Default()[0])
}

func TestBind(t *testing.T) {
	t.Run("pairs keys with table positions", func(t *testing.T) {
		keys := []label{{"C4"}, {"C#4"}, {"D4"}}
		pairs, err := keycode.Bind(keys, keycode.Default())
		require.NoError(t, err)
		require.Len(t, pairs, 3)

		wantCodes := []keycode.Code{90, 67, 86}
		for i, p := range pairs {
			require.Equal(t, keys[i], p.Key)
			require.True(t, p.Entry.Mapped)
			require.Equal(t, wantCodes[i], p.Entry.Code)
		}
	})

	t.Run("a full keyboard ends on the placeholder", func(t *testing.T) {
		keys := make([]int, 40)
		pairs, err := keycode.Bind(keys, keycode.Default())
		require.NoError(t, err)
		require.Equal(t, keycode.Unmapped, pairs[39].Entry)
	})

	t.Run("errors when keys outnumber the table", func(t *testing.T) {
		keys := make([]int, 41)
		_, err := keycode.Bind(keys, keycode.Default())
		require.ErrorIs(t, err, keycode.ErrTableOverflow)
	})

	t.Run("leaves the table untouched", func(t *testing.T) {
		table := keycode.Default()
		_, err := keycode.Bind([]string{"a", "b"}, table)
		require.NoError(t, err)
		require.Equal(t, keycode.Default(), table)
	})
}

func TestCodeKey(t *testing.T) {
	for code, want := range map[keycode.Code]string{
		90:  "z",
		65:  "a",
		48:  "0",
		53:  "5",
		186: ";",
		188: ",",
		190: ".",
		191: "/",
		13:  "",
	} {
		require.Equal(t, want, code.Key(), code)
	}
	require.Equal(t, "", keycode.Unmapped.Key())
	require.Equal(t, "null", keycode.Unmapped.String())
}

func TestLookup(t *testing.T) {
	table := keycode.Default()
	i, ok := table.Lookup(86)
	require.True(t, ok)
	require.Equal(t, 2, i)

	_, ok = table.Lookup(13)
	require.False(t, ok)
}

func TestLoadTable(t *testing.T) {
	t.Run("reads codes and placeholders", func(t *testing.T) {
		table, err := keycode.LoadTable(strings.NewReader("- keyCode: 81\n- keyCode: null\n- keyCode: 87\n"))
		require.NoError(t, err)
		require.Equal(t, keycode.Table{keycode.Mapped(81), keycode.Unmapped, keycode.Mapped(87)}, table)
	})

	t.Run("rejects an empty layout", func(t *testing.T) {
		_, err := keycode.LoadTable(strings.NewReader(""))
		require.ErrorIs(t, err, keycode.ErrEmptyTable)
		_, err = keycode.LoadTable(strings.NewReader("[]"))
		require.ErrorIs(t, err, keycode.ErrEmptyTable)
	})

	t.Run("rejects a code mapped twice", func(t *testing.T) {
		_, err := keycode.LoadTable(strings.NewReader("- keyCode: 81\n- keyCode: null\n- keyCode: 81\n"))
		require.ErrorIs(t, err, keycode.ErrDuplicateCode)

		// Placeholders may repeat.
		table, err := keycode.LoadTable(strings.NewReader("- keyCode: null\n- keyCode: null\n"))
		require.NoError(t, err)
		require.Len(t, table, 2)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := keycode.LoadTable(strings.NewReader("- keyCode: [nope"))
		require.Error(t, err)
	})

	t.Run("reads from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layout.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- keyCode: 65\n"), 0o644))
		table, err := keycode.LoadTableFile(path)
		require.NoError(t, err)
		require.Equal(t, keycode.Table{keycode.Mapped(65)}, table)
	})
}
