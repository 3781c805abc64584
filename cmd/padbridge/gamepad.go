package main

// Translation of raw evdev gamepad events into logical input samples.
//
// A DualShock-class pad reports buttons as EV_KEY, the dpad as hat axes,
// the triggers as 0-255 pressure axes, and the sticks as 0-255 position
// axes. Everything funnels into the closed LogicalInput set; the reducer
// never sees device codes.

// buttonCodes maps EV_KEY codes to logical inputs.
//
// BTN_TL2/BTN_TR2 are intentionally absent: the triggers are driven by
// their pressure axes (ABS_Z/ABS_RZ), and reacting to the digital edge as
// well would double-trigger them.
var buttonCodes = map[uint16]LogicalInput{
	BTN_SOUTH:  InputCross,
	BTN_EAST:   InputCircle,
	BTN_NORTH:  InputTriangle,
	BTN_WEST:   InputSquare,
	BTN_TL:     InputL1,
	BTN_TR:     InputR1,
	BTN_SELECT: InputCreate,
	BTN_START:  InputOptions,
	BTN_MODE:   InputPS,
	BTN_THUMBL: InputLeftStickClick,
	BTN_THUMBR: InputRightStickClick,
	BTN_TOUCH:  InputTouchpad,
}

// padDecoder turns raw input events into reducer events. It keeps the
// last stick axes so each single-axis sample can emit a full (x, y) pair.
type padDecoder struct {
	stickX float64
	stickY float64
}

func newPadDecoder() *padDecoder {
	return &padDecoder{}
}

// translate decodes one raw event. Most events produce one reducer event;
// hat samples produce two (a press/release level per dpad side), and
// unknown codes produce none.
func (d *padDecoder) translate(ev inputEvent) []Event {
	switch ev.Type {
	case EV_KEY:
		in, ok := buttonCodes[ev.Code]
		if !ok {
			return nil
		}
		pressed := ev.Value == evValuePress || ev.Value == evValueRepeat
		return []Event{ButtonSample{Input: in, Pressed: pressed}}

	case EV_ABS:
		switch ev.Code {
		case ABS_X:
			d.stickX = normStick(ev.Value)
			return []Event{StickMoved{X: d.stickX, Y: d.stickY}}

		case ABS_Y:
			// evdev y grows downward; the core treats positive y as up.
			d.stickY = -normStick(ev.Value)
			return []Event{StickMoved{X: d.stickX, Y: d.stickY}}

		case ABS_Z:
			return []Event{TriggerSample{Input: InputL2, Pressure: normTrigger(ev.Value)}}

		case ABS_RZ:
			return []Event{TriggerSample{Input: InputR2, Pressure: normTrigger(ev.Value)}}

		case ABS_HAT0X:
			return []Event{
				ButtonSample{Input: InputDpadLeft, Pressed: ev.Value < 0},
				ButtonSample{Input: InputDpadRight, Pressed: ev.Value > 0},
			}

		case ABS_HAT0Y:
			return []Event{
				ButtonSample{Input: InputDpadUp, Pressed: ev.Value < 0},
				ButtonSample{Input: InputDpadDown, Pressed: ev.Value > 0},
			}
		}
	}

	return nil
}

// normStick maps a 0-255 axis sample to [-1, 1].
func normStick(v int32) float64 {
	n := (float64(v) - 127.5) / 127.5
	if n < -1 {
		return -1
	}
	if n > 1 {
		return 1
	}
	return n
}

// normTrigger maps a 0-255 pressure sample to [0, 1].
func normTrigger(v int32) float64 {
	return clamp01(float64(v) / 255)
}
