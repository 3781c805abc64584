package main

import "time"

// Linux input event types and codes (from <linux/input.h>)
const (
	EV_KEY = 0x01
	EV_ABS = 0x03

	// Gamepad buttons (BTN_GAMEPAD block)
	BTN_SOUTH  = 0x130 // cross
	BTN_EAST   = 0x131 // circle
	BTN_NORTH  = 0x133 // triangle
	BTN_WEST   = 0x134 // square
	BTN_TL     = 0x136 // l1
	BTN_TR     = 0x137 // r1
	BTN_TL2    = 0x138 // l2 digital edge (pressure arrives on ABS_Z)
	BTN_TR2    = 0x139 // r2 digital edge (pressure arrives on ABS_RZ)
	BTN_SELECT = 0x13a // create/share
	BTN_START  = 0x13b // options
	BTN_MODE   = 0x13c // ps
	BTN_THUMBL = 0x13d // left stick click
	BTN_THUMBR = 0x13e // right stick click

	// Touchpad click registers as BTN_TOUCH on DualShock-class pads
	BTN_TOUCH = 0x14a

	// Absolute axes
	ABS_X     = 0x00 // left stick horizontal
	ABS_Y     = 0x01 // left stick vertical
	ABS_Z     = 0x02 // l2 pressure
	ABS_RZ    = 0x05 // r2 pressure
	ABS_HAT0X = 0x10 // dpad horizontal
	ABS_HAT0Y = 0x11 // dpad vertical
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

// Translation core constants. These are deliberately compiled in: the
// mapping behavior of the daemon should be identical on every install.
const (
	// midiChannel is the wire channel for every outbound message.
	// Channel 10 in 1-based MIDI parlance (the GM drum channel).
	midiChannel uint8 = 9

	// triggerThreshold converts continuous trigger pressure into a
	// boolean pressed state.
	triggerThreshold = 0.5

	// digitalVelocity is the note-on velocity for buttons without
	// pressure sensing.
	digitalVelocity uint8 = 127

	// stickThreshold is the deflection past which the left stick engages
	// note repeat.
	stickThreshold = 0.7

	// repeatNoteOffDelay is the staccato gap: every repeat fire schedules
	// a matching note-off this long after its note-on.
	repeatNoteOffDelay = 50 * time.Millisecond
)

// Note-repeat intervals by stick direction. Intentionally asymmetric:
// quarter / eighth / eighth-triplet / sixteenth feel at 120 BPM.
const (
	repeatIntervalLeft  = 500 * time.Millisecond
	repeatIntervalUp    = 250 * time.Millisecond
	repeatIntervalRight = 166 * time.Millisecond
	repeatIntervalDown  = 125 * time.Millisecond
)

// Daemon defaults
const (
	defaultUpdateHz = 200 // Tick cadence (Hz); bounds repeat/note-off timing resolution

	// midiRetryInterval is how often the daemon rescans for a MIDI output
	// port while none is bound.
	midiRetryInterval = 2 * time.Second
)
