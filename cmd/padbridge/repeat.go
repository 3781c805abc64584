package main

import (
	"math"
	"time"
)

// StickDirection is the cardinal direction of a stick deflection past the
// repeat threshold, or DirectionNone when the stick is neutral.
type StickDirection string

const (
	DirectionNone  StickDirection = "none"
	DirectionLeft  StickDirection = "left"
	DirectionRight StickDirection = "right"
	DirectionUp    StickDirection = "up"
	DirectionDown  StickDirection = "down"
)

// repeatIntervals maps a direction to its re-fire period.
var repeatIntervals = map[StickDirection]time.Duration{
	DirectionLeft:  repeatIntervalLeft,
	DirectionUp:    repeatIntervalUp,
	DirectionRight: repeatIntervalRight,
	DirectionDown:  repeatIntervalDown,
}

// RepeatState is the reducer-owned note-repeat schedule.
//
// The original timer-per-fire design is remodeled as plain deadlines the
// daemon's Tick events drive: NextFireAt for the recurring re-trigger and
// PendingOffs for the staccato note-offs each fire schedules. Both are
// dropped together on stick-neutral or controller disconnect, so there is
// no timer left to fire into torn-down state.
type RepeatState struct {
	Direction  StickDirection
	Interval   time.Duration
	NextFireAt time.Time

	// PendingOffs are staccato note-offs awaiting their deadline. They
	// survive the schedule stopping: a fired note-on must still be closed.
	PendingOffs []PendingOff

	// Last observed stick deflection, kept for snapshots/diagnostics.
	X, Y float64
}

// PendingOff is one scheduled staccato note-off.
type PendingOff struct {
	Note uint8
	At   time.Time
}

// stickDirection classifies a deflection. An axis engages when its
// magnitude reaches the threshold and exceeds the opposite axis; ties go
// to the vertical axis. Positive y is up.
func stickDirection(x, y float64) StickDirection {
	ax, ay := math.Abs(x), math.Abs(y)
	if ax < stickThreshold && ay < stickThreshold {
		return DirectionNone
	}
	if ax > ay {
		if x < 0 {
			return DirectionLeft
		}
		return DirectionRight
	}
	if y > 0 {
		return DirectionUp
	}
	return DirectionDown
}

// applyStick folds a stick sample into the schedule. A new direction
// replaces the previous schedule (never two concurrent); neutral cancels
// it. Returns the next state and whether the direction changed.
func applyStick(r RepeatState, x, y float64, now time.Time) (RepeatState, bool) {
	r.X, r.Y = x, y

	dir := stickDirection(x, y)
	if dir == r.Direction {
		return r, false
	}

	r.Direction = dir
	if dir == DirectionNone {
		r.Interval = 0
		r.NextFireAt = time.Time{}
		return r, true
	}

	r.Interval = repeatIntervals[dir]
	r.NextFireAt = now.Add(r.Interval)
	return r, true
}

// dueOffs splits PendingOffs into due notes and the remaining schedule.
func (r RepeatState) dueOffs(now time.Time) ([]uint8, []PendingOff) {
	var due []uint8
	var rest []PendingOff
	for _, off := range r.PendingOffs {
		if off.At.After(now) {
			rest = append(rest, off)
		} else {
			due = append(due, off.Note)
		}
	}
	return due, rest
}

// dropOffsFor removes pending note-offs for one note. Called when a user
// release already sent the note-off, so the staccato off must not
// double-send.
func (r RepeatState) dropOffsFor(note uint8) []PendingOff {
	var rest []PendingOff
	for _, off := range r.PendingOffs {
		if off.Note != note {
			rest = append(rest, off)
		}
	}
	return rest
}
