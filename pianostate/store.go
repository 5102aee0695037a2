// Package pianostate keeps track of which piano keys are currently pressed.
package pianostate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rapidmidiex/rmxpiano/music"
)

// Bounds of the default key domain, upper bound exclusive.
const (
	DefaultFrom = "A0"
	DefaultTo   = "C8"
)

var ErrUnknownNote = errors.New("unknown note")

type (
	// Change is sent to listeners whenever a key flips state.
	Change struct {
		Name    string
		MIDI    int
		Pressed bool
	}

	Listener func(Change)

	// Store maps note names ("C#4") to whether the key is held down. The set
	// of names is fixed when the Store is created.
	//
	// Writes are delivered to listeners in the order they were applied.
	// Listeners may read the store but must not write to it.
	Store struct {
		// held from a write until its listeners return
		dmu sync.Mutex

		mu      sync.RWMutex
		notes   []music.Pitch
		index   map[string]int
		pressed []bool

		lmu       sync.Mutex
		listeners []subscription
		nextID    int
	}

	subscription struct {
		id int
		fn Listener
	}
)

// New creates a Store for the notes from "from" up to, not including, "to".
func New(from, to string) (*Store, error) {
	notes, err := music.CreateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("piano state: %w", err)
	}

	index := make(map[string]int, len(notes))
	for i, n := range notes {
		index[n.Name] = i
	}

	return &Store{
		notes:   notes,
		index:   index,
		pressed: make([]bool, len(notes)),
	}, nil
}

// NewDefault creates a Store for A0 up to C8.
func NewDefault() (*Store, error) {
	return New(DefaultFrom, DefaultTo)
}

// Len returns the number of keys in the domain.
func (s *Store) Len() int {
	return len(s.notes)
}

// Names returns the domain in ascending order.
func (s *Store) Names() []string {
	return music.Names(s.notes)
}

// Get reports whether the key is pressed, and whether the name is known.
func (s *Store) Get(name string) (pressed, ok bool) {
	i, ok := s.lookup(name)
	if !ok {
		return false, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pressed[i], true
}

// Pressed returns the names of the pressed keys in ascending order.
func (s *Store) Pressed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0)
	for i, p := range s.pressed {
		if p {
			names = append(names, s.notes[i].Name)
		}
	}
	return names
}

// Snapshot returns a copy of the whole mapping.
func (s *Store) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]bool, len(s.notes))
	for i, n := range s.notes {
		snap[n.Name] = s.pressed[i]
	}
	return snap
}

// Set updates a key. Names are matched as given, then by their sharp
// spelling, so "Db4" sets "C#4". Unknown names leave the store untouched.
func (s *Store) Set(name string, pressed bool) error {
	i, ok := s.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	s.dmu.Lock()
	defer s.dmu.Unlock()

	s.mu.Lock()
	changed := s.pressed[i] != pressed
	s.pressed[i] = pressed
	s.mu.Unlock()

	if changed {
		s.notify(s.change(i, pressed))
	}
	return nil
}

func (s *Store) Press(name string) error {
	return s.Set(name, true)
}

func (s *Store) Release(name string) error {
	return s.Set(name, false)
}

// Reset releases every key.
func (s *Store) Reset() {
	s.dmu.Lock()
	defer s.dmu.Unlock()

	var changes []Change
	s.mu.Lock()
	for i, p := range s.pressed {
		if p {
			s.pressed[i] = false
			changes = append(changes, s.change(i, false))
		}
	}
	s.mu.Unlock()

	for _, c := range changes {
		s.notify(c)
	}
}

// Subscribe registers fn to be called synchronously after every key change.
// fn runs outside the state lock, so it may call Get or Snapshot, but it must
// not call Set, Press, Release or Reset. The returned func removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id int) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) notify(c Change) {
	s.lmu.Lock()
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.lmu.Unlock()

	for _, sub := range listeners {
		sub.fn(c)
	}
}

func (s *Store) change(i int, pressed bool) Change {
	return Change{Name: s.notes[i].Name, MIDI: s.notes[i].Height, Pressed: pressed}
}

// lookup resolves a name to its domain index. notes and index never change
// after New, so no lock is needed.
func (s *Store) lookup(name string) (int, bool) {
	if i, ok := s.index[name]; ok {
		return i, true
	}
	p, err := music.ParsePitch(name)
	if err != nil {
		return 0, false
	}
	i, ok := s.index[p.Sharp().Name]
	return i, ok
}
