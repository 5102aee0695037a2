// Package keycode holds the fixed table pairing on-screen piano keys with
// input-device key codes.
package keycode

import (
	"errors"
	"fmt"
	"strconv"
)

type (
	// Code is an input-device key code, numbered like browser keyCodes
	// ("Z" = 90, ";" = 186).
	Code int

	// Entry is one slot of the table. Unmapped entries are placeholders with
	// no key code.
	Entry struct {
		Code   Code
		Mapped bool
	}

	Table []Entry

	// Pair is a key matched with the table entry at the same position.
	Pair[K any] struct {
		Key   K
		Entry Entry
	}
)

var ErrTableOverflow = errors.New("more keys than key code table entries")

// Unmapped is the placeholder entry.
var Unmapped = Entry{}

// reference layout, 40 slots, the last one a placeholder.
var defaultTable = Table{
	Mapped(90),  // Z
	Mapped(67),  // C
	Mapped(86),  // V
	Mapped(71),  // G
	Mapped(68),  // D
	Mapped(83),  // S
	Mapped(81),  // Q
	Mapped(69),  // E
	Mapped(84),  // T
	Mapped(53),  // 5
	Mapped(51),  // 3
	Mapped(49),  // 1
	Mapped(54),  // 6
	Mapped(56),  // 8
	Mapped(48),  // 0
	Mapped(79),  // O
	Mapped(73),  // I
	Mapped(89),  // Y
	Mapped(74),  // J
	Mapped(75),  // K
	Mapped(186), // ;
	Mapped(190), // .
	Mapped(77),  // M
	Mapped(78),  // N
	Mapped(88),  // X
	Mapped(66),  // B
	Mapped(70),  // F
	Mapped(65),  // A
	Mapped(87),  // W
	Mapped(82),  // R
	Mapped(52),  // 4
	Mapped(50),  // 2
	Mapped(55),  // 7
	Mapped(57),  // 9
	Mapped(80),  // P
	Mapped(85),  // U
	Mapped(72),  // H
	Mapped(76),  // L
	Mapped(191), // /
	Mapped(188), // ,
	Unmapped,
}

func Mapped(c Code) Entry {
	return Entry{Code: c, Mapped: true}
}

// Default returns a copy of the reference layout.
func Default() Table {
	t := make(Table, len(defaultTable))
	copy(t, defaultTable)
	return t
}

// Key returns the terminal key string for the code, ex: 90 -> "z".
// Codes without a printable key return "".
func (c Code) Key() string {
	switch {
	case c >= 'A' && c <= 'Z':
		return string(rune(c - 'A' + 'a'))
	case c >= '0' && c <= '9':
		return string(rune(c))
	}
	switch c {
	case 186:
		return ";"
	case 187:
		return "="
	case 188:
		return ","
	case 189:
		return "-"
	case 190:
		return "."
	case 191:
		return "/"
	case 219:
		return "["
	case 221:
		return "]"
	case 222:
		return "'"
	}
	return ""
}

func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Key returns the terminal key string of a mapped entry.
func (e Entry) Key() string {
	if !e.Mapped {
		return ""
	}
	return e.Code.Key()
}

func (e Entry) String() string {
	if !e.Mapped {
		return "null"
	}
	return e.Code.String()
}

// Lookup returns the position of a mapped code in the table.
func (t Table) Lookup(c Code) (int, bool) {
	for i, e := range t {
		if e.Mapped && e.Code == c {
			return i, true
		}
	}
	return -1, false
}

// Bind pairs keys with the table by position: keys[i] gets t[i]. Lists
// shorter than the table use its prefix; longer lists are an error.
// Neither keys nor t are modified.
func Bind[K any](keys []K, t Table) ([]Pair[K], error) {
	if len(keys) > len(t) {
		return nil, fmt.Errorf("%w: %d keys, %d entries", ErrTableOverflow, len(keys), len(t))
	}
	pairs := make([]Pair[K], len(keys))
	for i, k := range keys {
		pairs[i] = Pair[K]{Key: k, Entry: t[i]}
	}
	return pairs, nil
}
