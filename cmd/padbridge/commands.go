package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command represents an external side effect requested by the reducer and
// executed by the daemon loop. In this codebase, those are outbound MIDI
// messages plus snapshot delivery.
type Command interface {
	commandMarker()
	String() string
}

// CmdNoteOn sends a note-on on the fixed drum channel.
type CmdNoteOn struct {
	Note     uint8
	Velocity uint8
}

func (CmdNoteOn) commandMarker() {}
func (c CmdNoteOn) String() string {
	return fmt.Sprintf("CmdNoteOn(note=%d vel=%d)", c.Note, c.Velocity)
}

// CmdNoteOff sends a note-off on the fixed drum channel.
type CmdNoteOff struct {
	Note uint8
}

func (CmdNoteOff) commandMarker()   {}
func (c CmdNoteOff) String() string { return fmt.Sprintf("CmdNoteOff(note=%d)", c.Note) }

// CmdControlChange sends a control change on the fixed drum channel.
type CmdControlChange struct {
	Controller uint8
	Value      uint8
}

func (CmdControlChange) commandMarker() {}
func (c CmdControlChange) String() string {
	return fmt.Sprintf("CmdControlChange(cc=%d val=%d)", c.Controller, c.Value)
}

// CmdPublishStateSnapshot delivers a reducer-produced snapshot to a
// requester. The channel send happens in the effects layer so the reducer
// stays pure.
type CmdPublishStateSnapshot struct {
	Snapshot StateSnapshot
	Reply    chan StateSnapshot
}

func (CmdPublishStateSnapshot) commandMarker() {}
func (CmdPublishStateSnapshot) String() string { return "CmdPublishStateSnapshot()" }
