package main

import "fmt"

// LogicalInput identifies a physical control independently of the active
// mode. The set is closed: every control the daemon reacts to is listed
// here, and the mapping tables below key off these identifiers.
type LogicalInput string

const (
	InputCross    LogicalInput = "cross"
	InputCircle   LogicalInput = "circle"
	InputSquare   LogicalInput = "square"
	InputTriangle LogicalInput = "triangle"

	InputDpadUp    LogicalInput = "dpad_up"
	InputDpadDown  LogicalInput = "dpad_down"
	InputDpadLeft  LogicalInput = "dpad_left"
	InputDpadRight LogicalInput = "dpad_right"

	InputL1 LogicalInput = "l1"
	InputR1 LogicalInput = "r1"

	// Pressure-sensitive triggers; their samples carry a [0,1] pressure.
	InputL2 LogicalInput = "l2"
	InputR2 LogicalInput = "r2"

	// Special inputs: never note-mapped, routed to the control-change
	// path (or the mode switcher, if configured as the switch input).
	InputOptions         LogicalInput = "options"
	InputCreate          LogicalInput = "create"
	InputPS              LogicalInput = "ps"
	InputTouchpad        LogicalInput = "touchpad"
	InputLeftStickClick  LogicalInput = "left_stick_click"
	InputRightStickClick LogicalInput = "right_stick_click"
)

// specialInputs are routed through control maps instead of note maps.
var specialInputs = map[LogicalInput]bool{
	InputOptions:         true,
	InputCreate:          true,
	InputPS:              true,
	InputTouchpad:        true,
	InputLeftStickClick:  true,
	InputRightStickClick: true,
}

// defaultSwitchInput is the out-of-the-box mode-switch designator.
const defaultSwitchInput = InputPS

// switchableInputs are the inputs a user may designate as the mode switch.
var switchableInputs = map[LogicalInput]bool{
	InputPS:              true,
	InputCreate:          true,
	InputTouchpad:        true,
	InputLeftStickClick:  true,
	InputRightStickClick: true,
}

var knownInputs = map[LogicalInput]bool{
	InputCross: true, InputCircle: true, InputSquare: true, InputTriangle: true,
	InputDpadUp: true, InputDpadDown: true, InputDpadLeft: true, InputDpadRight: true,
	InputL1: true, InputR1: true, InputL2: true, InputR2: true,
	InputOptions: true, InputCreate: true, InputPS: true, InputTouchpad: true,
	InputLeftStickClick: true, InputRightStickClick: true,
}

// parseLogicalInput validates an input name from config/IPC.
func parseLogicalInput(s string) (LogicalInput, error) {
	in := LogicalInput(s)
	if !knownInputs[in] {
		return "", fmt.Errorf("unknown input: %q", s)
	}
	return in, nil
}

// Mode selects the active DAW profile: which note map the primary inputs
// use and which control-change map the special inputs use.
type Mode string

const (
	ModeStandardDrums Mode = "standard_drums"
	ModePadController Mode = "pad_controller"
	ModeSceneLauncher Mode = "scene_launcher"
	ModeSessionView   Mode = "session_view"
	ModeSamplerRack   Mode = "sampler_rack"
)

// modeOrder is the fixed cyclic order the mode switcher advances through.
var modeOrder = []Mode{
	ModeStandardDrums,
	ModePadController,
	ModeSceneLauncher,
	ModeSessionView,
	ModeSamplerRack,
}

func parseMode(s string) (Mode, error) {
	for _, m := range modeOrder {
		if Mode(s) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// nextMode returns the entry after m in modeOrder, wrapping.
func nextMode(m Mode) Mode {
	for i, cur := range modeOrder {
		if cur == m {
			return modeOrder[(i+1)%len(modeOrder)]
		}
	}
	return modeOrder[0]
}

// Variant is a per-mode sub-selector changing which special inputs
// produce control-change messages.
type Variant string

const (
	VariantPlain        Variant = "plain"
	VariantWithPatterns Variant = "with_patterns"
	VariantWithScenes   Variant = "with_scenes"
	VariantWithBanks    Variant = "with_banks"
)

func parseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantPlain, VariantWithPatterns, VariantWithScenes, VariantWithBanks:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown variant: %q", s)
}

// defaultVariants is the variant each mode resets to when it becomes active.
var defaultVariants = map[Mode]Variant{
	ModeStandardDrums: VariantPlain,
	ModePadController: VariantPlain,
	ModeSceneLauncher: VariantWithScenes,
	ModeSessionView:   VariantPlain,
	ModeSamplerRack:   VariantWithBanks,
}

// Control-change numbers used by the control maps. 102-119 are undefined
// in the MIDI spec and free for device-specific assignments.
const (
	ccPatternPrev   uint8 = 105
	ccPatternNext   uint8 = 106
	ccSceneNext     uint8 = 107
	ccScenePrev     uint8 = 108
	ccSessionRecord uint8 = 109
	ccSessionPlay   uint8 = 110
	ccBankNext      uint8 = 111
	ccBankPrev      uint8 = 112
)

// noteMaps fixes LogicalInput -> MIDI note per mode.
//
// StandardDrums follows the General MIDI percussion map (kick 36,
// snare 38, hats 42/46, toms, crash, clap). The remaining modes expose
// contiguous chromatic pad banks at different octaves, which is what DAW
// drum racks and clip grids expect.
var noteMaps = map[Mode]map[LogicalInput]uint8{
	ModeStandardDrums: {
		InputCross:     36, // kick
		InputCircle:    38, // snare
		InputSquare:    42, // closed hi-hat
		InputTriangle:  46, // open hi-hat
		InputDpadDown:  41, // low floor tom
		InputDpadLeft:  45, // low tom
		InputDpadUp:    48, // hi-mid tom
		InputDpadRight: 50, // high tom
		InputL1:        39, // hand clap
		InputR1:        37, // side stick
		InputL2:        43, // high floor tom
		InputR2:        49, // crash cymbal
	},
	ModePadController: {
		InputCross:     36,
		InputCircle:    37,
		InputSquare:    38,
		InputTriangle:  39,
		InputDpadUp:    40,
		InputDpadDown:  41,
		InputDpadLeft:  42,
		InputDpadRight: 43,
		InputL1:        44,
		InputR1:        45,
		InputL2:        46,
		InputR2:        47,
	},
	ModeSceneLauncher: {
		InputCross:     48,
		InputCircle:    49,
		InputSquare:    50,
		InputTriangle:  51,
		InputDpadUp:    52,
		InputDpadDown:  53,
		InputDpadLeft:  54,
		InputDpadRight: 55,
		InputL1:        56,
		InputR1:        57,
		InputL2:        58,
		InputR2:        59,
	},
	ModeSessionView: {
		InputCross:     60,
		InputCircle:    61,
		InputSquare:    62,
		InputTriangle:  63,
		InputDpadUp:    64,
		InputDpadDown:  65,
		InputDpadLeft:  66,
		InputDpadRight: 67,
		InputL1:        68,
		InputR1:        69,
		InputL2:        70,
		InputR2:        71,
	},
	ModeSamplerRack: {
		InputCross:     24,
		InputCircle:    25,
		InputSquare:    26,
		InputTriangle:  27,
		InputDpadUp:    28,
		InputDpadDown:  29,
		InputDpadLeft:  30,
		InputDpadRight: 31,
		InputL1:        32,
		InputR1:        33,
		InputL2:        34,
		InputR2:        35,
	},
}

// controlMaps fixes special-input -> CC number per (mode, variant).
// A (mode, variant) pair without an entry produces no control messages.
var controlMaps = map[Mode]map[Variant]map[LogicalInput]uint8{
	ModePadController: {
		VariantWithPatterns: {
			InputOptions: ccPatternNext,
			InputCreate:  ccPatternPrev,
		},
		VariantWithScenes: {
			InputOptions:         ccPatternNext,
			InputCreate:          ccPatternPrev,
			InputLeftStickClick:  ccSceneNext,
			InputRightStickClick: ccScenePrev,
		},
	},
	ModeSceneLauncher: {
		VariantWithScenes: {
			InputLeftStickClick:  ccSceneNext,
			InputRightStickClick: ccScenePrev,
		},
	},
	ModeSessionView: {
		VariantWithScenes: {
			InputOptions:         ccSessionPlay,
			InputCreate:          ccSessionRecord,
			InputLeftStickClick:  ccSceneNext,
			InputRightStickClick: ccScenePrev,
		},
	},
	ModeSamplerRack: {
		VariantWithBanks: {
			InputOptions: ccBankNext,
			InputCreate:  ccBankPrev,
		},
	},
}

// lookupNote resolves a primary input in the given mode's note map.
func lookupNote(mode Mode, in LogicalInput) (uint8, bool) {
	nm, ok := noteMaps[mode]
	if !ok {
		return 0, false
	}
	note, ok := nm[in]
	return note, ok
}

// lookupControl resolves a special input in the given mode+variant
// control map.
func lookupControl(mode Mode, variant Variant, in LogicalInput) (uint8, bool) {
	vm, ok := controlMaps[mode]
	if !ok {
		return 0, false
	}
	cm, ok := vm[variant]
	if !ok {
		return 0, false
	}
	cc, ok := cm[in]
	return cc, ok
}
