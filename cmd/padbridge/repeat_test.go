package main

import (
	"testing"
	"time"
)

func TestStickDirection_Classification(t *testing.T) {
	cases := []struct {
		x, y float64
		want StickDirection
	}{
		{0, 0, DirectionNone},
		{0.5, 0.5, DirectionNone}, // under threshold on both axes
		{-0.8, 0, DirectionLeft},
		{0.8, 0, DirectionRight},
		{0, 0.8, DirectionUp},
		{0, -0.8, DirectionDown},
		{-0.9, 0.3, DirectionLeft},  // horizontal dominates
		{0.3, -0.9, DirectionDown},  // vertical dominates
		{0.8, 0.8, DirectionUp},     // tie goes vertical
		{-0.8, -0.8, DirectionDown}, // tie goes vertical
		{0.7, 0, DirectionRight},    // exactly at threshold engages
	}

	for _, c := range cases {
		if got := stickDirection(c.x, c.y); got != c.want {
			t.Errorf("stickDirection(%.2f, %.2f) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestApplyStick_EngageReplaceAndCancel(t *testing.T) {
	now := time.Now()
	var r RepeatState

	// Engage left: quarter-note interval.
	r, changed := applyStick(r, -0.8, 0, now)
	if !changed {
		t.Fatalf("expected direction change on engage")
	}
	if r.Direction != DirectionLeft || r.Interval != 500*time.Millisecond {
		t.Fatalf("expected left/500ms, got %s/%s", r.Direction, r.Interval)
	}
	if !r.NextFireAt.Equal(now.Add(500 * time.Millisecond)) {
		t.Errorf("expected first fire one interval after engage")
	}

	// Same direction again: no change, schedule untouched.
	prevFire := r.NextFireAt
	r, changed = applyStick(r, -0.95, 0.1, now.Add(10*time.Millisecond))
	if changed {
		t.Fatalf("same direction should not report a change")
	}
	if !r.NextFireAt.Equal(prevFire) {
		t.Errorf("schedule must not reset while direction holds")
	}

	// Swing to up: schedule replaced with the new rate.
	later := now.Add(20 * time.Millisecond)
	r, changed = applyStick(r, 0, 0.9, later)
	if !changed || r.Direction != DirectionUp {
		t.Fatalf("expected switch to up, got %s (changed=%v)", r.Direction, changed)
	}
	if r.Interval != 250*time.Millisecond {
		t.Errorf("expected 250ms interval for up, got %s", r.Interval)
	}
	if !r.NextFireAt.Equal(later.Add(250 * time.Millisecond)) {
		t.Errorf("new direction must restart the schedule from now")
	}

	// Back to neutral: schedule canceled.
	r, changed = applyStick(r, 0, 0, later)
	if !changed || r.Direction != DirectionNone {
		t.Fatalf("expected cancel on neutral, got %s (changed=%v)", r.Direction, changed)
	}
	if r.Interval != 0 || !r.NextFireAt.IsZero() {
		t.Errorf("expected cleared schedule, got interval=%s fire=%v", r.Interval, r.NextFireAt)
	}
}

func TestRepeatIntervals_PerDirection(t *testing.T) {
	want := map[StickDirection]time.Duration{
		DirectionLeft:  500 * time.Millisecond,
		DirectionUp:    250 * time.Millisecond,
		DirectionRight: 166 * time.Millisecond,
		DirectionDown:  125 * time.Millisecond,
	}
	for dir, d := range want {
		if repeatIntervals[dir] != d {
			t.Errorf("interval for %s = %s, want %s", dir, repeatIntervals[dir], d)
		}
	}
}

func TestReducer_RepeatFiresHeldNotesOnTick(t *testing.T) {
	state := NewSessionState(defaultSwitchInput)
	t0 := time.Now()

	// Hold a pad and engage repeat to the right (166ms).
	rr := reduceEvent(t, state, ButtonSample{Input: InputCross, Pressed: true}, t0)
	rr = reduceEvent(t, rr.State, StickMoved{X: 0.9, Y: 0}, t0)

	// Tick before the deadline: nothing fires.
	rr = Reduce(rr.State, Tick{Now: t0.Add(100 * time.Millisecond), Dt: 0.005})
	if len(rr.Commands) != 0 {
		t.Fatalf("expected no fire before the deadline, got %d commands", len(rr.Commands))
	}

	// Tick past the deadline: one note-on plus a scheduled staccato off.
	fire := t0.Add(170 * time.Millisecond)
	rr = Reduce(rr.State, Tick{Now: fire, Dt: 0.005})
	if len(rr.Commands) != 1 {
		t.Fatalf("expected 1 note-on at fire time, got %d", len(rr.Commands))
	}
	on, ok := rr.Commands[0].(CmdNoteOn)
	if !ok || on.Note != 36 || on.Velocity != digitalVelocity {
		t.Fatalf("expected repeat note-on 36@127, got %v", rr.Commands[0])
	}
	if len(rr.State.Repeat.PendingOffs) != 1 {
		t.Fatalf("expected 1 pending staccato off, got %d", len(rr.State.Repeat.PendingOffs))
	}

	// Tick past the staccato deadline: the off goes out.
	rr = Reduce(rr.State, Tick{Now: fire.Add(60 * time.Millisecond), Dt: 0.005})
	foundOff := false
	for _, cmd := range rr.Commands {
		if off, ok := cmd.(CmdNoteOff); ok && off.Note == 36 {
			foundOff = true
		}
	}
	if !foundOff {
		t.Fatalf("expected staccato note-off for 36, got %v", rr.Commands)
	}
	if len(rr.State.Repeat.PendingOffs) != 0 {
		t.Errorf("expected pending offs drained, got %d", len(rr.State.Repeat.PendingOffs))
	}
}

func TestReducer_RepeatWithNothingHeldIsSilent(t *testing.T) {
	state := NewSessionState(defaultSwitchInput)
	t0 := time.Now()

	rr := reduceEvent(t, state, StickMoved{X: 0, Y: -0.9}, t0)
	rr = Reduce(rr.State, Tick{Now: t0.Add(200 * time.Millisecond), Dt: 0.005})
	if len(rr.Commands) != 0 {
		t.Fatalf("repeat with empty held set must emit nothing, got %d commands", len(rr.Commands))
	}
}

func TestReducer_UserReleaseDropsPendingStaccatoOff(t *testing.T) {
	state := NewSessionState(defaultSwitchInput)
	t0 := time.Now()

	rr := reduceEvent(t, state, ButtonSample{Input: InputCircle, Pressed: true}, t0)
	rr = reduceEvent(t, rr.State, StickMoved{X: -0.9, Y: 0}, t0)

	// Fire once.
	fire := t0.Add(510 * time.Millisecond)
	rr = Reduce(rr.State, Tick{Now: fire, Dt: 0.005})
	if len(rr.State.Repeat.PendingOffs) != 1 {
		t.Fatalf("expected a pending off after the fire, got %d", len(rr.State.Repeat.PendingOffs))
	}

	// User releases before the staccato deadline: exactly one note-off,
	// and the scheduled off is dropped.
	rr = reduceEvent(t, rr.State, ButtonSample{Input: InputCircle, Pressed: false}, fire.Add(10*time.Millisecond))
	if len(rr.Commands) != 1 {
		t.Fatalf("expected 1 note-off on release, got %d", len(rr.Commands))
	}
	if len(rr.State.Repeat.PendingOffs) != 0 {
		t.Fatalf("expected pending off dropped by the release, got %d", len(rr.State.Repeat.PendingOffs))
	}

	// The next tick must not double-send the off.
	rr = Reduce(rr.State, Tick{Now: fire.Add(60 * time.Millisecond), Dt: 0.005})
	for _, cmd := range rr.Commands {
		if off, ok := cmd.(CmdNoteOff); ok && off.Note == 38 {
			t.Fatalf("staccato off fired after the user release already closed the note")
		}
	}
}

func TestReducer_RepeatBroadcastsDirectionChanges(t *testing.T) {
	state := NewSessionState(defaultSwitchInput)
	t0 := time.Now()

	rr := reduceEvent(t, state, StickMoved{X: 0.9, Y: 0}, t0)
	if len(rr.Broadcasts) != 1 {
		t.Fatalf("expected 1 broadcast on engage, got %d", len(rr.Broadcasts))
	}
	bc, ok := rr.Broadcasts[0].(BroadcastRepeatChanged)
	if !ok {
		t.Fatalf("expected BroadcastRepeatChanged, got %T", rr.Broadcasts[0])
	}
	if bc.Direction != DirectionRight || bc.IntervalMS != 166 {
		t.Errorf("expected right/166ms, got %s/%d", bc.Direction, bc.IntervalMS)
	}

	// Wiggling inside the same zone: no broadcast.
	rr = reduceEvent(t, rr.State, StickMoved{X: 0.95, Y: 0.1}, t0)
	if len(rr.Broadcasts) != 0 {
		t.Fatalf("expected no broadcast for same-direction wiggle, got %d", len(rr.Broadcasts))
	}

	// Neutral: broadcast idle.
	rr = reduceEvent(t, rr.State, StickMoved{X: 0, Y: 0}, t0)
	if len(rr.Broadcasts) != 1 {
		t.Fatalf("expected 1 broadcast on cancel, got %d", len(rr.Broadcasts))
	}
	bc = rr.Broadcasts[0].(BroadcastRepeatChanged)
	if bc.Direction != DirectionNone || bc.IntervalMS != 0 {
		t.Errorf("expected none/0, got %s/%d", bc.Direction, bc.IntervalMS)
	}
}
