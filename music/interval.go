package music

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Interval is a simple (up to an octave) ascending interval, ex: "m2", "P5".
type Interval struct {
	Name string
	// Number of letter steps, "m2" is 1.
	Steps int
	// Size in semitones, "m2" is 1.
	Semitones int
}

var ErrInvalidInterval = errors.New("invalid interval")

// MinorSecond is the step used when walking a note range.
var MinorSecond = Interval{Name: "m2", Steps: 1, Semitones: 1}

// semitones of major/perfect intervals, indexed by number-1.
var baseSemitones = [8]int{0, 2, 4, 5, 7, 9, 11, 12}

func isPerfect(number int) bool {
	return number == 1 || number == 4 || number == 5 || number == 8
}

// ParseInterval parses an interval name made of a quality (P, M, m, A, d)
// and a number from 1 to 8.
func ParseInterval(name string) (Interval, error) {
	if len(name) < 2 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, name)
	}
	quality := name[0]
	number, err := strconv.Atoi(name[1:])
	if err != nil || number < 1 || number > 8 {
		return Interval{}, fmt.Errorf("%w: %q: bad number", ErrInvalidInterval, name)
	}

	semis := baseSemitones[number-1]
	perfect := isPerfect(number)
	switch {
	case quality == 'P' && perfect:
	case quality == 'M' && !perfect:
	case quality == 'm' && !perfect:
		semis--
	case quality == 'A':
		semis++
	case quality == 'd' && perfect:
		semis--
	case quality == 'd':
		semis -= 2
	default:
		return Interval{}, fmt.Errorf("%w: %q: bad quality", ErrInvalidInterval, name)
	}
	if semis < 0 {
		return Interval{}, fmt.Errorf("%w: %q: below unison", ErrInvalidInterval, name)
	}

	return Interval{Name: name, Steps: number - 1, Semitones: semis}, nil
}

// Transpose moves p up by iv, keeping the letter spelling of the interval.
// C4 + m2 is Db4, not C#4.
func Transpose(p Pitch, iv Interval) Pitch {
	step := strings.IndexByte(letters, p.Letter) + iv.Steps
	octave := p.Octave + step/7
	letter := letters[step%7]

	height := p.Height + iv.Semitones
	natural := naturalSemitones[step%7] + 12*(octave+1)
	return newPitch(letter, height-natural, octave)
}
