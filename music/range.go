package music

import (
	"errors"
	"fmt"
)

var ErrUnsupportedDirection = errors.New("reverse ranges are not supported")

// CreateRange returns the pitches from "from" (inclusive) up to "to"
// (exclusive), one semitone apart and spelled with sharps. A flat "from" is
// respelled before the walk, so "Db4".."D4" yields ["C#4"].
//
// Callers wanting "to" included pass a bound one semitone higher.
func CreateRange(from, to string) ([]Pitch, error) {
	fromPitch, err := ParsePitch(from)
	if err != nil {
		return nil, fmt.Errorf("range from: %w", err)
	}
	toPitch, err := ParsePitch(to)
	if err != nil {
		return nil, fmt.Errorf("range to: %w", err)
	}

	if fromPitch.Height >= toPitch.Height {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedDirection, fromPitch, toPitch)
	}

	if fromPitch.Accidental() == Flat {
		fromPitch = Enharmonic(fromPitch)
	}

	n := toPitch.Height - fromPitch.Height
	notes := make([]Pitch, 0, n)
	for i, cur := 0, fromPitch; i < n; i++ {
		notes = append(notes, cur)
		cur = Enharmonic(Transpose(cur, MinorSecond))
	}

	return notes, nil
}

// Names returns the names of the given pitches, in order.
func Names(pitches []Pitch) []string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.Name
	}
	return names
}
