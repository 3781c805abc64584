package main

import (
	"log/slog"
	"time"
)

// MidiSink is the outbound MIDI surface the effects layer writes to.
// Channel is explicit so tests can assert the fixed drum channel.
type MidiSink interface {
	NoteOn(channel, note, velocity uint8) error
	NoteOff(channel, note uint8) error
	ControlChange(channel, controller, value uint8) error
	Ready() bool
}

// runEffect executes a single reducer-emitted Command (side effect)
// against the MIDI sink and reports failures back via onEvent.
//
// Design rules:
//   - This function is allowed to perform I/O.
//   - It must never call Reduce() directly; it only emits events to be
//     reduced by the daemon loop.
//   - Sends are fire-and-forget: an unavailable sink drops the message
//     (non-fatal "not connected" state), it does not error out.
func runEffect(sink MidiSink, cmd Command, logger *slog.Logger, onEvent func(Event)) {
	now := time.Now()

	switch c := cmd.(type) {
	case CmdPublishStateSnapshot:
		// Deliver the reducer-produced snapshot to the requester. The
		// channel send lives here to keep the reducer pure.
		if c.Reply == nil {
			logger.Warn("state snapshot requested with nil reply channel")
			return
		}
		select {
		case c.Reply <- c.Snapshot:
		default:
			logger.Warn("state snapshot reply channel not ready; dropping snapshot")
		}
		return

	case CmdNoteOn:
		if sink == nil || !sink.Ready() {
			logger.Debug("midi sink not ready, dropping", "command", cmd.String())
			return
		}
		if err := sink.NoteOn(midiChannel, c.Note, c.Velocity); err != nil {
			logger.Error("midi NoteOn failed", "error", err, "note", c.Note, "velocity", c.Velocity)
			emit(onEvent, MidiSendFailed{Command: cmd, Err: err, At: now})
		}

	case CmdNoteOff:
		if sink == nil || !sink.Ready() {
			logger.Debug("midi sink not ready, dropping", "command", cmd.String())
			return
		}
		if err := sink.NoteOff(midiChannel, c.Note); err != nil {
			logger.Error("midi NoteOff failed", "error", err, "note", c.Note)
			emit(onEvent, MidiSendFailed{Command: cmd, Err: err, At: now})
		}

	case CmdControlChange:
		if sink == nil || !sink.Ready() {
			logger.Debug("midi sink not ready, dropping", "command", cmd.String())
			return
		}
		if err := sink.ControlChange(midiChannel, c.Controller, c.Value); err != nil {
			logger.Error("midi ControlChange failed", "error", err, "cc", c.Controller, "value", c.Value)
			emit(onEvent, MidiSendFailed{Command: cmd, Err: err, At: now})
		}

	default:
		logger.Warn("unknown command type", "command", cmd.String())
	}
}

func emit(onEvent func(Event), ev Event) {
	if onEvent != nil {
		onEvent(ev)
	}
}
