package main

import (
	"sort"
	"time"
)

// SessionState is the top-level, daemon-owned state container for one
// controller session.
//
// Goals:
//   - Keep all reducer-owned state in one place (pure reducer, no ambient
//     globals, no external mutation).
//   - Make it cheap to publish a coherent snapshot to other clients
//     (IPC/WS/UI) without exposing the live maps.
//
// Everything in here is mutated only on the daemon goroutine.
type SessionState struct {
	// Pad is the controller connection state reported by the input layer.
	Pad PadState

	// Mode is the active mode/variant consumed by the translator.
	Mode ActiveModeState

	// SwitchInput is the special input currently designated to advance
	// the mode. User-selectable among the switchable inputs.
	SwitchInput LogicalInput

	// Inputs holds per-input edge-detector state.
	Inputs map[LogicalInput]InputState

	// Held maps a pressed input to the note its press produced.
	// Invariant: an entry exists iff the input is currently pressed AND
	// the note map active at press time resolved it. Note-offs are taken
	// from here, never from a fresh map lookup, so a mode switch mid-hold
	// can never produce a stale note-off.
	Held map[LogicalInput]uint8

	// Repeat is the note-repeat schedule driven by left-stick deflection.
	Repeat RepeatState

	// Sink is the last known MIDI output availability.
	Sink SinkState
}

// PadState is the cached controller connection state.
type PadState struct {
	Connected bool
	Name      string
	At        time.Time
}

// ActiveModeState is the mode/variant pair the translator consults.
type ActiveModeState struct {
	Mode    Mode
	Variant Variant
}

// SinkState is the cached MIDI output availability.
type SinkState struct {
	Ready bool
	At    time.Time
}

// NewSessionState builds the initial session: first mode in the cycle,
// its default variant, and the given mode-switch designator.
func NewSessionState(switchInput LogicalInput) *SessionState {
	first := modeOrder[0]
	return &SessionState{
		Mode:        ActiveModeState{Mode: first, Variant: defaultVariants[first]},
		SwitchInput: switchInput,
		Inputs:      make(map[LogicalInput]InputState),
		Held:        make(map[LogicalInput]uint8),
	}
}

// heldNotes returns the currently sounding notes in ascending order.
// Sorted so flush command order is deterministic.
func (s *SessionState) heldNotes() []uint8 {
	if len(s.Held) == 0 {
		return nil
	}
	notes := make([]uint8, 0, len(s.Held))
	for _, n := range s.Held {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}

// resetInputs drops all edge-detector state (controller session boundary).
func (s *SessionState) resetInputs() {
	s.Inputs = make(map[LogicalInput]InputState)
}

// snapshot assembles an externally-consumable copy of the session state.
// Maps are copied; the live state is never shared across goroutines.
func (s *SessionState) snapshot(at time.Time) StateSnapshot {
	noteMap := make(map[LogicalInput]uint8, len(noteMaps[s.Mode.Mode]))
	for in, n := range noteMaps[s.Mode.Mode] {
		noteMap[in] = n
	}

	controlMap := make(map[LogicalInput]uint8)
	if vm, ok := controlMaps[s.Mode.Mode]; ok {
		for in, cc := range vm[s.Mode.Variant] {
			controlMap[in] = cc
		}
	}

	return StateSnapshot{
		Mode:            s.Mode.Mode,
		Variant:         s.Mode.Variant,
		SwitchInput:     s.SwitchInput,
		Connected:       s.Pad.Connected,
		ControllerName:  s.Pad.Name,
		SinkReady:       s.Sink.Ready,
		HeldNotes:       s.heldNotes(),
		RepeatDirection: s.Repeat.Direction,
		NoteMap:         noteMap,
		ControlMap:      controlMap,
		At:              at,
	}
}

// StateSnapshot is the coherent view handed to snapshot requesters
// (the WS state_init message). Decoupled from internal state on purpose.
type StateSnapshot struct {
	Mode            Mode                   `json:"mode"`
	Variant         Variant                `json:"variant"`
	SwitchInput     LogicalInput           `json:"switch_input"`
	Connected       bool                   `json:"connected"`
	ControllerName  string                 `json:"controller_name,omitempty"`
	SinkReady       bool                   `json:"sink_ready"`
	HeldNotes       []uint8                `json:"held_notes,omitempty"`
	RepeatDirection StickDirection         `json:"repeat_direction"`
	NoteMap         map[LogicalInput]uint8 `json:"note_map"`
	ControlMap      map[LogicalInput]uint8 `json:"control_map,omitempty"`
	At              time.Time              `json:"at"`
}
