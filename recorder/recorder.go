// Package recorder captures key changes from a piano store so they can be
// played back later with their original timing.
package recorder

import (
	"sync"
	"time"

	"github.com/rapidmidiex/rmxpiano/pianostate"
)

type (
	// Event is a key change and when it happened, relative to the start of
	// the recording.
	Event struct {
		pianostate.Change
		At time.Duration
	}

	// Take is a finished recording, in the order the changes happened.
	Take []Event

	Recorder struct {
		store *pianostate.Store
		now   func() time.Time

		mu        sync.Mutex
		recording bool
		start     time.Time
		events    []Event
		take      Take
		cancel    func()
	}
)

// New returns a Recorder for store. now defaults to time.Now.
func New(store *pianostate.Store, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: store, now: now}
}

// Start begins a new recording, discarding one in progress.
func (r *Recorder) Start() {
	r.Stop()

	r.mu.Lock()
	r.recording = true
	r.start = r.now()
	r.events = nil
	r.mu.Unlock()

	cancel := r.store.Subscribe(r.record)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// Stop ends the recording and keeps it as the current take. Stopping when
// not recording returns the previous take.
func (r *Recorder) Stop() Take {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	if r.recording {
		r.recording = false
		r.take = Take(r.events)
		r.events = nil
	}
	take := r.take
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return take
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Take returns the last finished recording.
func (r *Recorder) Take() Take {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.take
}

func (r *Recorder) record(c pianostate.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.events = append(r.events, Event{Change: c, At: r.now().Sub(r.start)})
}

// Delay returns how long to wait after event i-1 before playing event i.
// The first event plays right away.
func (t Take) Delay(i int) time.Duration {
	if i <= 0 || i >= len(t) {
		return 0
	}
	if d := t[i].At - t[i-1].At; d > 0 {
		return d
	}
	return 0
}

// Duration is the time from the start of the recording to its last event.
func (t Take) Duration() time.Duration {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].At
}
