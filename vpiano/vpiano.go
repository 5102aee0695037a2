package vpiano

import (
	"errors"
	"fmt"

	"github.com/rapidmidiex/rmxpiano/keycode"
	"github.com/rapidmidiex/rmxpiano/music"
)

type (
	Key struct {
		// MIDI note number, based on C4=60
		MIDI int
		// Name of the note, ex: "C4", "F#2"
		Name string
		// Denotes if note is sharp ie. "black" key.
		IsAccidental bool
		// Input-device key code for this key, if any.
		KeyCode keycode.Entry
		// qwerty keyboard key binding, ex: "z".
		KeyBinding string
	}

	Keys []Key

	KeyBindingMap map[string]Key
)

// Bounds of the on-screen keyboard when none are configured. Forty keys, one
// per key code table slot.
const (
	DefaultFrom = "C3"
	DefaultTo   = "E6"
)

// Lowest and highest (exclusive) MIDI numbers a keyboard may cover.
const (
	LowestMIDI  = 21  // A0
	HighestMIDI = 108 // C8
)

var ErrOutOfRange = errors.New("keyboard out of piano range")

// MakeKeys creates one key per note from "from" up to, not including, "to".
func MakeKeys(from, to string) (Keys, error) {
	notes, err := music.CreateRange(from, to)
	if err != nil {
		return nil, err
	}

	keys := make(Keys, 0, len(notes))
	for _, n := range notes {
		keys = append(keys, Key{
			MIDI:         n.MIDI(),
			Name:         n.Name,
			IsAccidental: n.Accidental() != music.Natural,
		})
	}
	return keys, nil
}

// WithKeyCodes returns a copy of keys with the key code of the table entry
// at the same position. Table fields replace whatever the key carried.
func (keys Keys) WithKeyCodes(t keycode.Table) (Keys, error) {
	pairs, err := keycode.Bind(keys, t)
	if err != nil {
		return nil, err
	}

	bound := make(Keys, len(pairs))
	for i, p := range pairs {
		k := p.Key
		k.KeyCode = p.Entry
		k.KeyBinding = p.Entry.Key()
		bound[i] = k
	}
	return bound, nil
}

// NewKeyboard makes the keys from "from" to "to" and binds them to t.
func NewKeyboard(from, to string, t keycode.Table) (Keys, error) {
	keys, err := MakeKeys(from, to)
	if err != nil {
		return nil, err
	}
	if !InRange(keys[0].MIDI) || !InRange(keys[len(keys)-1].MIDI) {
		return nil, fmt.Errorf("%w: %s..%s", ErrOutOfRange, from, to)
	}
	return keys.WithKeyCodes(t)
}

// Shift rebuilds the keyboard moved by the given number of semitones.
func (keys Keys) Shift(semitones int, t keycode.Table) (Keys, error) {
	if len(keys) == 0 {
		return keys, nil
	}
	from := keys[0].MIDI + semitones
	to := keys[len(keys)-1].MIDI + 1 + semitones
	return NewKeyboard(music.FromHeight(from).Name, music.FromHeight(to).Name, t)
}

// Bounds returns the first note and the exclusive upper note of the keyboard.
func (keys Keys) Bounds() (from, to string) {
	if len(keys) == 0 {
		return "", ""
	}
	return keys[0].Name, music.FromHeight(keys[len(keys)-1].MIDI + 1).Name
}

func (keys Keys) ToBindingMap() KeyBindingMap {
	bMap := make(KeyBindingMap, len(keys))
	for _, k := range keys {
		if k.KeyBinding == "" {
			continue
		}
		bMap[k.KeyBinding] = k
	}
	return bMap
}

func InRange(midiNum int) bool {
	return midiNum >= LowestMIDI && midiNum < HighestMIDI
}
