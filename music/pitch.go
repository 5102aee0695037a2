// Package music contains the pitch primitives the piano is built on: parsing
// note names, transposing by an interval, enharmonic respelling, and
// generating ascending note ranges.
package music

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type (
	Accidental int

	// Pitch is a note with an octave, ex: "C#4".
	Pitch struct {
		// Name of the pitch, ex: "C#4", "Db4", "A0"
		Name string
		// Letter name, A-G.
		Letter byte
		// Semitone alteration. 1 for "#", -1 for "b", 2 for "##"/"x".
		Alt int
		Octave int
		// Semitones from C-1. Equal to the MIDI note number, C4=60.
		Height int
	}
)

const (
	Natural Accidental = iota
	Sharp
	Flat
)

var ErrInvalidPitch = errors.New("invalid pitch")

// Supported octaves. Heights stay near the MIDI range 0..127.
const (
	MinOctave = -1
	MaxOctave = 9
)

// letter order, starting at C.
const letters = "CDEFGAB"

// semitones of each natural above C.
var naturalSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

var sharpNames = [12]struct {
	letter byte
	alt    int
}{
	{'C', 0}, {'C', 1}, {'D', 0}, {'D', 1}, {'E', 0}, {'F', 0},
	{'F', 1}, {'G', 0}, {'G', 1}, {'A', 0}, {'A', 1}, {'B', 0},
}

func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "sharp"
	case Flat:
		return "flat"
	default:
		return "natural"
	}
}

// ParsePitch parses a note name such as "C4", "f#3", "Bb-1" or "Cx4".
// An octave is required since the height is needed for ordering.
func ParsePitch(name string) (Pitch, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return Pitch{}, fmt.Errorf("%w: empty name", ErrInvalidPitch)
	}

	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if strings.IndexByte(letters, letter) < 0 {
		return Pitch{}, fmt.Errorf("%w: %q: bad letter", ErrInvalidPitch, name)
	}

	i := 1
	alt := 0
	var accChar byte
	for ; i < len(s); i++ {
		c := s[i]
		if c != '#' && c != 'b' && c != 'x' {
			break
		}
		// mixed accidentals, ex: "C#b4"
		if accChar != 0 && c != accChar {
			return Pitch{}, fmt.Errorf("%w: %q: mixed accidentals", ErrInvalidPitch, name)
		}
		accChar = c
		switch c {
		case '#':
			alt++
		case 'b':
			alt--
		case 'x':
			alt += 2
		}
	}

	if i == len(s) {
		return Pitch{}, fmt.Errorf("%w: %q: missing octave", ErrInvalidPitch, name)
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: %q: bad octave", ErrInvalidPitch, name)
	}
	if octave < MinOctave || octave > MaxOctave {
		return Pitch{}, fmt.Errorf("%w: %q: octave outside %d..%d", ErrInvalidPitch, name, MinOctave, MaxOctave)
	}

	return newPitch(letter, alt, octave), nil
}

// MustParsePitch is like ParsePitch but panics on error.
func MustParsePitch(name string) Pitch {
	p, err := ParsePitch(name)
	if err != nil {
		panic(err)
	}
	return p
}

// FromHeight returns the sharp spelling of the given height, ex: 61 -> "C#4".
func FromHeight(height int) Pitch {
	octave := floorDiv(height, 12) - 1
	n := sharpNames[height-(octave+1)*12]
	return newPitch(n.letter, n.alt, octave)
}

func newPitch(letter byte, alt, octave int) Pitch {
	step := strings.IndexByte(letters, letter)
	return Pitch{
		Name:   pitchName(letter, alt, octave),
		Letter: letter,
		Alt:    alt,
		Octave: octave,
		Height: naturalSemitones[step] + alt + 12*(octave+1),
	}
}

func pitchName(letter byte, alt, octave int) string {
	var acc string
	switch {
	case alt > 0:
		acc = strings.Repeat("#", alt)
	case alt < 0:
		acc = strings.Repeat("b", -alt)
	}
	return string(letter) + acc + strconv.Itoa(octave)
}

func (p Pitch) Accidental() Accidental {
	switch {
	case p.Alt > 0:
		return Sharp
	case p.Alt < 0:
		return Flat
	default:
		return Natural
	}
}

// MIDI returns the MIDI note number of the pitch.
func (p Pitch) MIDI() int {
	return p.Height
}

// Freq returns the frequency in Hz, equal temperament with A4 = 440Hz.
func (p Pitch) Freq() float64 {
	return 440 * math.Pow(2, float64(p.Height-69)/12)
}

func (p Pitch) String() string {
	return p.Name
}

// Sharp returns the canonical sharp spelling of p. Pitches already spelled
// that way are returned unchanged.
func (p Pitch) Sharp() Pitch {
	return FromHeight(p.Height)
}

// Enharmonic respells p with sharps, ex: "Db4" -> "C#4", "E#4" -> "F4".
func Enharmonic(p Pitch) Pitch {
	return p.Sharp()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
