package main

import (
	"math"
	"testing"
)

func TestPadDecoder_ButtonsMapToLogicalInputs(t *testing.T) {
	d := newPadDecoder()

	evs := d.translate(inputEvent{Type: EV_KEY, Code: BTN_SOUTH, Value: evValuePress})
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	bs, ok := evs[0].(ButtonSample)
	if !ok {
		t.Fatalf("expected ButtonSample, got %T", evs[0])
	}
	if bs.Input != InputCross || !bs.Pressed {
		t.Errorf("BTN_SOUTH press should be cross pressed, got %+v", bs)
	}

	evs = d.translate(inputEvent{Type: EV_KEY, Code: BTN_SOUTH, Value: evValueRelease})
	if bs := evs[0].(ButtonSample); bs.Pressed {
		t.Errorf("value 0 should decode as released")
	}

	// Kernel key-repeat counts as held.
	evs = d.translate(inputEvent{Type: EV_KEY, Code: BTN_MODE, Value: evValueRepeat})
	if bs := evs[0].(ButtonSample); bs.Input != InputPS || !bs.Pressed {
		t.Errorf("BTN_MODE repeat should be ps pressed, got %+v", bs)
	}

	// Unknown key codes are dropped.
	if evs := d.translate(inputEvent{Type: EV_KEY, Code: 0x2ff, Value: evValuePress}); len(evs) != 0 {
		t.Errorf("unknown key code should produce no events, got %d", len(evs))
	}

	// Digital trigger edges are dropped; the pressure axis drives them.
	if evs := d.translate(inputEvent{Type: EV_KEY, Code: BTN_TL2, Value: evValuePress}); len(evs) != 0 {
		t.Errorf("BTN_TL2 should produce no events, got %d", len(evs))
	}
}

func TestPadDecoder_TriggersCarryPressure(t *testing.T) {
	d := newPadDecoder()

	evs := d.translate(inputEvent{Type: EV_ABS, Code: ABS_RZ, Value: 255})
	ts, ok := evs[0].(TriggerSample)
	if !ok {
		t.Fatalf("expected TriggerSample, got %T", evs[0])
	}
	if ts.Input != InputR2 || ts.Pressure != 1 {
		t.Errorf("ABS_RZ 255 should be r2 at full pressure, got %+v", ts)
	}

	evs = d.translate(inputEvent{Type: EV_ABS, Code: ABS_Z, Value: 0})
	ts = evs[0].(TriggerSample)
	if ts.Input != InputL2 || ts.Pressure != 0 {
		t.Errorf("ABS_Z 0 should be l2 at zero pressure, got %+v", ts)
	}
}

func TestPadDecoder_StickCombinesAxesAndFlipsY(t *testing.T) {
	d := newPadDecoder()

	// Full left.
	evs := d.translate(inputEvent{Type: EV_ABS, Code: ABS_X, Value: 0})
	sm := evs[0].(StickMoved)
	if math.Abs(sm.X-(-1)) > 1e-9 || sm.Y != 0 {
		t.Errorf("expected x=-1 y=0, got %+v", sm)
	}

	// Full up: evdev y=0 is up, the core wants positive y.
	evs = d.translate(inputEvent{Type: EV_ABS, Code: ABS_Y, Value: 0})
	sm = evs[0].(StickMoved)
	if math.Abs(sm.Y-1) > 1e-9 {
		t.Errorf("expected y=+1 for evdev value 0, got %+v", sm)
	}
	// The x from the previous sample is retained.
	if math.Abs(sm.X-(-1)) > 1e-9 {
		t.Errorf("expected retained x=-1, got %+v", sm)
	}

	// Center-ish value stays inside [-1,1].
	evs = d.translate(inputEvent{Type: EV_ABS, Code: ABS_X, Value: 128})
	sm = evs[0].(StickMoved)
	if sm.X < -1 || sm.X > 1 || math.Abs(sm.X) > 0.01 {
		t.Errorf("expected near-zero x for centered sample, got %f", sm.X)
	}
}

func TestPadDecoder_HatProducesBothSides(t *testing.T) {
	d := newPadDecoder()

	evs := d.translate(inputEvent{Type: EV_ABS, Code: ABS_HAT0X, Value: -1})
	if len(evs) != 2 {
		t.Fatalf("expected 2 events for a hat sample, got %d", len(evs))
	}
	left := evs[0].(ButtonSample)
	right := evs[1].(ButtonSample)
	if left.Input != InputDpadLeft || !left.Pressed {
		t.Errorf("expected dpad_left pressed, got %+v", left)
	}
	if right.Input != InputDpadRight || right.Pressed {
		t.Errorf("expected dpad_right released, got %+v", right)
	}

	// Neutral releases both sides.
	evs = d.translate(inputEvent{Type: EV_ABS, Code: ABS_HAT0Y, Value: 0})
	up := evs[0].(ButtonSample)
	down := evs[1].(ButtonSample)
	if up.Pressed || down.Pressed {
		t.Errorf("hat neutral should release both sides, got %+v %+v", up, down)
	}
}
