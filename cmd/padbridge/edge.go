package main

import "math"

// InputState is the per-input debounce state. It is owned by the session
// state and mutated only on the daemon goroutine.
type InputState struct {
	Pressed  bool
	Pressure float64 // last observed pressure, [0,1]
}

// TransitionKind classifies the edge an input sample produced.
type TransitionKind int

const (
	TransitionNone TransitionKind = iota
	TransitionPressed
	TransitionReleased
)

// Transition is the result of observing one raw input sample.
// Velocity is only meaningful for TransitionPressed.
type Transition struct {
	Kind     TransitionKind
	Velocity uint8
}

// clamp01 clamps pressure into [0,1]. Out-of-range samples come from
// driver quirks and are coerced rather than rejected.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pressureVelocity converts a [0,1] pressure to a MIDI velocity.
func pressureVelocity(p float64) uint8 {
	return uint8(math.Round(clamp01(p) * 127))
}

// observeButton processes a digital button sample. Only the false->true
// edge yields TransitionPressed (at fixed maximum velocity) and only the
// true->false edge yields TransitionReleased; sustained levels yield
// TransitionNone.
func observeButton(prev InputState, pressed bool) (InputState, Transition) {
	next := InputState{Pressed: pressed}
	if pressed {
		next.Pressure = 1
	}

	switch {
	case pressed && !prev.Pressed:
		return next, Transition{Kind: TransitionPressed, Velocity: digitalVelocity}
	case !pressed && prev.Pressed:
		return next, Transition{Kind: TransitionReleased}
	default:
		return next, Transition{Kind: TransitionNone}
	}
}

// observeTrigger processes a pressure-sensitive trigger sample. The fixed
// threshold converts continuous pressure into a pressed state; velocity is
// captured from the pressure at the moment of the press edge.
func observeTrigger(prev InputState, pressure float64) (InputState, Transition) {
	p := clamp01(pressure)
	pressed := p >= triggerThreshold
	next := InputState{Pressed: pressed, Pressure: p}

	switch {
	case pressed && !prev.Pressed:
		return next, Transition{Kind: TransitionPressed, Velocity: pressureVelocity(p)}
	case !pressed && prev.Pressed:
		return next, Transition{Kind: TransitionReleased}
	default:
		return next, Transition{Kind: TransitionNone}
	}
}
