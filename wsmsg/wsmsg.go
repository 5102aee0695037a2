// Package wsmsg contains the message types sent to state feed subscribers.
package wsmsg

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type (
	MsgType   int
	NoteState int

	Envelope struct {
		// Message identifier
		ID uuid.UUID `json:"id"`
		// SnapshotMsg | NoteMsg | ResetMsg
		Typ MsgType `json:"type"`
		// Actual message data.
		Payload json.RawMessage `json:"payload"`
	}

	// SnapshotMsg is the first message a subscriber receives.
	SnapshotMsg struct {
		// Names of the pressed keys, lowest first.
		Pressed []string `json:"pressed"`
		// Number of keys in the piano.
		Size int `json:"size"`
	}

	NoteMsg struct {
		State NoteState `json:"state"`
		// Note name, ex: "C#4"
		Name string `json:"name"`
		// MIDI Note #, C4 = 60. Available values: (21-107)
		Number int `json:"number"`
	}

	ResetMsg struct{}
)

const (
	SNAPSHOT MsgType = iota
	NOTE
	RESET
)

const (
	NOTE_OFF NoteState = iota
	NOTE_ON
)

// New builds an envelope with a fresh ID around payload.
func New(typ MsgType, payload any) (Envelope, error) {
	e := Envelope{ID: uuid.New(), Typ: typ}
	if err := e.SetPayload(payload); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func (e *Envelope) SetPayload(payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}

func (e *Envelope) Unwrap(msg any) error {
	return json.Unmarshal(e.Payload, msg)
}

func (t *MsgType) UnmarshalJSON(data []byte) error {
	var rawType string
	err := json.Unmarshal(data, &rawType)
	if err != nil {
		return err
	}

	switch rawType {
	case "snapshot":
		*t = SNAPSHOT
	case "note":
		*t = NOTE
	case "reset":
		*t = RESET
	default:
		return fmt.Errorf("unknown type: %s", rawType)
	}
	return nil
}

func (t MsgType) MarshalJSON() ([]byte, error) {
	switch t {
	case SNAPSHOT:
		return []byte(`"snapshot"`), nil
	case NOTE:
		return []byte(`"note"`), nil
	case RESET:
		return []byte(`"reset"`), nil
	}
	return []byte{}, fmt.Errorf("unknown MsgType value: %d", t)
}

// StateOf converts a pressed flag to a NoteState.
func StateOf(pressed bool) NoteState {
	if pressed {
		return NOTE_ON
	}
	return NOTE_OFF
}
