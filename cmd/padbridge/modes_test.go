package main

import "testing"

var primaryInputs = []LogicalInput{
	InputCross, InputCircle, InputSquare, InputTriangle,
	InputDpadUp, InputDpadDown, InputDpadLeft, InputDpadRight,
	InputL1, InputR1, InputL2, InputR2,
}

func TestNoteMaps_EveryModeCoversAllPrimaryInputs(t *testing.T) {
	for _, mode := range modeOrder {
		nm, ok := noteMaps[mode]
		if !ok {
			t.Fatalf("mode %s has no note map", mode)
		}
		for _, in := range primaryInputs {
			if _, ok := nm[in]; !ok {
				t.Errorf("mode %s: primary input %s unmapped", mode, in)
			}
		}
		for in := range nm {
			if specialInputs[in] {
				t.Errorf("mode %s: special input %s must not be note-mapped", mode, in)
			}
		}
	}
}

func TestNoteMaps_PadBankOctaves(t *testing.T) {
	bases := map[Mode]uint8{
		ModePadController: 36,
		ModeSceneLauncher: 48,
		ModeSessionView:   60,
		ModeSamplerRack:   24,
	}

	for mode, base := range bases {
		seen := make(map[uint8]bool)
		for _, in := range primaryInputs {
			n := noteMaps[mode][in]
			if n < base || n > base+11 {
				t.Errorf("mode %s: note %d for %s outside bank [%d, %d]", mode, n, in, base, base+11)
			}
			if seen[n] {
				t.Errorf("mode %s: note %d assigned twice", mode, n)
			}
			seen[n] = true
		}
	}
}

func TestControlMaps_OnlySpecialInputs(t *testing.T) {
	for mode, vm := range controlMaps {
		for variant, cm := range vm {
			for in, cc := range cm {
				if !specialInputs[in] {
					t.Errorf("%s/%s: control map entry for non-special input %s", mode, variant, in)
				}
				if cc < 102 || cc > 119 {
					t.Errorf("%s/%s: CC %d outside the undefined 102-119 range", mode, variant, cc)
				}
			}
		}
	}
}

func TestNextMode_CyclesInOrder(t *testing.T) {
	m := modeOrder[0]
	for i := 0; i < len(modeOrder); i++ {
		next := nextMode(m)
		want := modeOrder[(i+1)%len(modeOrder)]
		if next != want {
			t.Fatalf("nextMode(%s) = %s, want %s", m, next, want)
		}
		m = next
	}
	if m != modeOrder[0] {
		t.Errorf("full cycle should return to the first mode, got %s", m)
	}
}

func TestParseHelpers_RejectUnknownNames(t *testing.T) {
	if _, err := parseMode("jazz_mode"); err == nil {
		t.Errorf("parseMode should reject unknown names")
	}
	if _, err := parseVariant("deluxe"); err == nil {
		t.Errorf("parseVariant should reject unknown names")
	}
	if _, err := parseLogicalInput("start"); err == nil {
		t.Errorf("parseLogicalInput should reject evdev-style names")
	}
	if in, err := parseLogicalInput("left_stick_click"); err != nil || in != InputLeftStickClick {
		t.Errorf("parseLogicalInput(left_stick_click) = %v, %v", in, err)
	}
}

func TestDefaultVariants_CoverEveryMode(t *testing.T) {
	for _, mode := range modeOrder {
		if _, ok := defaultVariants[mode]; !ok {
			t.Errorf("mode %s has no default variant", mode)
		}
	}
}
