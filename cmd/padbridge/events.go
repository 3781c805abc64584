package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Events - inputs to the reducer
// ============================================================================
// Events represent intent from various sources (controller, IPC, WS, the
// daemon's own ticker) plus observations fed back by the effects layer.
// The daemon loop is the single consumer; it reduces every event in the
// order it arrived.
// ============================================================================

// Event is the marker interface for everything the reducer consumes.
type Event interface {
	eventMarker()
}

// Tick is emitted by the daemon loop at a fixed cadence. It drives the
// note-repeat schedule and the delayed staccato note-offs.
type Tick struct {
	Now time.Time
	Dt  float64
}

func (Tick) eventMarker() {}

// TimedEvent wraps a payload event with the daemon-assigned arrival time,
// keeping payload types clean of timestamps.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// ButtonSample is one raw digital sample for a button-class input.
// Duplicate levels are fine; the edge detector suppresses them.
type ButtonSample struct {
	Input   LogicalInput `json:"input"`
	Pressed bool         `json:"pressed"`
}

func (ButtonSample) eventMarker() {}

// TriggerSample is one raw pressure sample for an analog trigger.
type TriggerSample struct {
	Input    LogicalInput `json:"input"`
	Pressure float64      `json:"pressure"` // [0,1]; out-of-range is clamped
}

func (TriggerSample) eventMarker() {}

// StickMoved is one left-stick deflection sample. Positive y is up.
type StickMoved struct {
	X float64 `json:"x"` // [-1,1]
	Y float64 `json:"y"` // [-1,1]
}

func (StickMoved) eventMarker() {}

// ControllerConnected indicates a pad session began.
type ControllerConnected struct {
	Name string `json:"name"`
}

func (ControllerConnected) eventMarker() {}

// ControllerDisconnected indicates the pad session ended. The reducer
// flushes held notes and cancels note repeat.
type ControllerDisconnected struct{}

func (ControllerDisconnected) eventMarker() {}

// SetMode selects a mode directly (IPC/UI), resetting the variant to the
// mode's default. Held notes are flushed exactly as on a switch press.
type SetMode struct {
	Mode string `json:"mode"`
}

func (SetMode) eventMarker() {}

// SetVariant selects the active mode's variant (IPC/UI).
type SetVariant struct {
	Variant string `json:"variant"`
}

func (SetVariant) eventMarker() {}

// SetModeSwitchInput re-designates which special input advances the mode.
type SetModeSwitchInput struct {
	Input string `json:"input"`
}

func (SetModeSwitchInput) eventMarker() {}

// AllNotesOff is the panic action: note-off for everything sounding.
type AllNotesOff struct{}

func (AllNotesOff) eventMarker() {}

// SinkStateChanged reports MIDI output availability (startup probe,
// reconnection) into the reducer so snapshots and broadcasts stay honest.
type SinkStateChanged struct {
	Ready bool
	At    time.Time
}

func (SinkStateChanged) eventMarker() {}

// MidiSendFailed is emitted by the effects layer when a send errored.
type MidiSendFailed struct {
	Command Command
	Err     error
	At      time.Time
}

func (MidiSendFailed) eventMarker() {}

// RequestStateSnapshot asks the reducer for a coherent state snapshot.
// The reducer answers with CmdPublishStateSnapshot so the channel send
// happens in the effects layer, keeping the reducer pure.
type RequestStateSnapshot struct {
	Reply chan StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================
// EventEnvelope wraps events for the line-delimited JSON IPC protocol.
// Only externally-injectable events are representable; internal events
// (Tick, snapshot requests, effect observations) are deliberately absent.
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete Event.
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "button_sample":
		var e ButtonSample
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ButtonSample: %w", err)
		}
		return e, nil

	case "trigger_sample":
		var e TriggerSample
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal TriggerSample: %w", err)
		}
		return e, nil

	case "stick_moved":
		var e StickMoved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal StickMoved: %w", err)
		}
		return e, nil

	case "set_mode":
		var e SetMode
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetMode: %w", err)
		}
		return e, nil

	case "set_variant":
		var e SetVariant
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetVariant: %w", err)
		}
		return e, nil

	case "set_switch_input":
		var e SetModeSwitchInput
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetModeSwitchInput: %w", err)
		}
		return e, nil

	case "all_notes_off":
		return AllNotesOff{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope with type
// discriminator. Only IPC-transportable events are supported.
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	switch e := e.(type) {
	case ButtonSample:
		env.Type = "button_sample"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal ButtonSample: %w", err)
		}
		env.Data = data

	case TriggerSample:
		env.Type = "trigger_sample"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal TriggerSample: %w", err)
		}
		env.Data = data

	case StickMoved:
		env.Type = "stick_moved"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal StickMoved: %w", err)
		}
		env.Data = data

	case SetMode:
		env.Type = "set_mode"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetMode: %w", err)
		}
		env.Data = data

	case SetVariant:
		env.Type = "set_variant"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetVariant: %w", err)
		}
		env.Data = data

	case SetModeSwitchInput:
		env.Type = "set_switch_input"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetModeSwitchInput: %w", err)
		}
		env.Data = data

	case AllNotesOff:
		env.Type = "all_notes_off"

	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}
