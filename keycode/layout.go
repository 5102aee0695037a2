package keycode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyTable    = errors.New("key code table is empty")
	ErrDuplicateCode = errors.New("key code mapped twice")
)

type yamlEntry struct {
	KeyCode *int `yaml:"keyCode"`
}

// LoadTable reads a layout in the form
//
//	- keyCode: 90
//	- keyCode: null
//
// A code may appear at most once, since one terminal key cannot play two
// piano keys.
func LoadTable(r io.Reader) (Table, error) {
	var raw []yamlEntry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyTable
	}

	t := make(Table, len(raw))
	for i, e := range raw {
		if e.KeyCode == nil {
			t[i] = Unmapped
			continue
		}
		c := Code(*e.KeyCode)
		if j, ok := t[:i].Lookup(c); ok {
			return nil, fmt.Errorf("%w: %d at entries %d and %d", ErrDuplicateCode, c, j, i)
		}
		t[i] = Mapped(c)
	}
	return t, nil
}

func LoadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTable(f)
}
