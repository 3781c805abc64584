package main

import "time"

// This file implements the translation core as a reducer:
//
//   - Events: raw controller samples, stick deflection, IPC/UI actions,
//     time ticks, and effect-layer observations
//   - Commands: outbound MIDI messages requested by the reducer
//   - Reduce(): computes next state + commands + broadcasts, without I/O
//
// The reducer must be pure. All session state lives in SessionState and
// the daemon loop is the only caller; it executes commands against the
// MIDI sink and feeds observations back as events. Because every input
// sample, IPC action, and tick is serialized through that one loop, a
// repeat-fired note-off can never race a user-initiated note-off.

// ==============================
// State broadcasts
// ==============================

// StateBroadcast is a reducer-emitted notification for external state
// consumers (the WS hub). Broadcasts carry copies, never live state.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastModeChanged reports a new active mode/variant.
type BroadcastModeChanged struct {
	Mode    Mode
	Variant Variant
	At      time.Time
}

func (BroadcastModeChanged) broadcastMarker() {}

// BroadcastControllerState reports controller connect/disconnect.
type BroadcastControllerState struct {
	Connected bool
	Name      string
	At        time.Time
}

func (BroadcastControllerState) broadcastMarker() {}

// BroadcastRepeatChanged reports the note-repeat schedule changing.
type BroadcastRepeatChanged struct {
	Direction  StickDirection
	IntervalMS int64 // 0 when idle
	At         time.Time
}

func (BroadcastRepeatChanged) broadcastMarker() {}

// BroadcastSinkState reports MIDI output availability changing.
type BroadcastSinkState struct {
	Ready bool
	At    time.Time
}

func (BroadcastSinkState) broadcastMarker() {}

// ==============================
// Reducer input/output
// ==============================

// ReduceResult is the output of Reduce(): next state plus the side
// effects and broadcasts to execute.
type ReduceResult struct {
	State      *SessionState
	Commands   []Command
	Broadcasts []StateBroadcast
}

// Reduce is the pure reducer.
//
// Rules:
//   - Must not perform I/O
//   - Must not block
//   - Must not mutate anything outside the returned state
//
// The daemon loop must execute Commands, translate failures into events,
// and feed those events back into Reduce().
func Reduce(s *SessionState, e Event) ReduceResult {
	if s == nil {
		s = NewSessionState(defaultSwitchInput)
	}

	switch ev := e.(type) {
	case Tick:
		return reduceTick(s, ev)
	case TimedEvent:
		return reduceAt(s, ev.Event, ev.At)
	default:
		return reduceAt(s, e, time.Now())
	}
}

// reduceTick drives the time-based machinery: due staccato note-offs
// first (they close the previous fire), then the next repeat fire.
func reduceTick(s *SessionState, ev Tick) ReduceResult {
	var cmds []Command

	due, rest := s.Repeat.dueOffs(ev.Now)
	s.Repeat.PendingOffs = rest
	for _, note := range due {
		cmds = append(cmds, CmdNoteOff{Note: note})
	}

	if s.Repeat.Direction != DirectionNone && !s.Repeat.NextFireAt.IsZero() && !s.Repeat.NextFireAt.After(ev.Now) {
		// Re-fire everything currently held, direction selects only the
		// rate. Each fire schedules its own short note-off.
		for _, note := range s.heldNotes() {
			cmds = append(cmds, CmdNoteOn{Note: note, Velocity: digitalVelocity})
			s.Repeat.PendingOffs = append(s.Repeat.PendingOffs, PendingOff{
				Note: note,
				At:   ev.Now.Add(repeatNoteOffDelay),
			})
		}
		s.Repeat.NextFireAt = ev.Now.Add(s.Repeat.Interval)
	}

	return ReduceResult{State: s, Commands: cmds}
}

func reduceAt(s *SessionState, e Event, at time.Time) ReduceResult {
	var cmds []Command
	var bcs []StateBroadcast

	switch ev := e.(type) {
	case ButtonSample:
		prev := s.Inputs[ev.Input]
		next, tr := observeButton(prev, ev.Pressed)
		s.Inputs[ev.Input] = next
		cmds, bcs = applyTransition(s, ev.Input, tr, at)

	case TriggerSample:
		prev := s.Inputs[ev.Input]
		next, tr := observeTrigger(prev, ev.Pressure)
		s.Inputs[ev.Input] = next
		cmds, bcs = applyTransition(s, ev.Input, tr, at)

	case StickMoved:
		nextRepeat, changed := applyStick(s.Repeat, ev.X, ev.Y, at)
		s.Repeat = nextRepeat
		if changed {
			bcs = append(bcs, BroadcastRepeatChanged{
				Direction:  s.Repeat.Direction,
				IntervalMS: s.Repeat.Interval.Milliseconds(),
				At:         at,
			})
		}

	case ControllerConnected:
		s.Pad = PadState{Connected: true, Name: ev.Name, At: at}
		s.resetInputs()
		s.Held = make(map[LogicalInput]uint8)
		s.Repeat = RepeatState{}
		bcs = append(bcs, BroadcastControllerState{Connected: true, Name: ev.Name, At: at})

	case ControllerDisconnected:
		// Close everything sounding before the session state is torn
		// down; a disconnect must never leave stuck notes behind.
		cmds = append(cmds, flushHeld(s)...)
		s.Pad = PadState{Connected: false, At: at}
		s.resetInputs()
		s.Repeat = RepeatState{}
		bcs = append(bcs, BroadcastControllerState{Connected: false, At: at})

	case SetMode:
		mode, err := parseMode(ev.Mode)
		if err != nil {
			break // unknown mode names from IPC are ignored
		}
		cmds = append(cmds, flushHeld(s)...)
		s.Mode = ActiveModeState{Mode: mode, Variant: defaultVariants[mode]}
		bcs = append(bcs, BroadcastModeChanged{Mode: s.Mode.Mode, Variant: s.Mode.Variant, At: at})

	case SetVariant:
		variant, err := parseVariant(ev.Variant)
		if err != nil {
			break
		}
		s.Mode.Variant = variant
		bcs = append(bcs, BroadcastModeChanged{Mode: s.Mode.Mode, Variant: s.Mode.Variant, At: at})

	case SetModeSwitchInput:
		in, err := parseLogicalInput(ev.Input)
		if err != nil || !switchableInputs[in] {
			break
		}
		s.SwitchInput = in

	case AllNotesOff:
		cmds = append(cmds, flushHeld(s)...)

	case SinkStateChanged:
		if s.Sink.Ready != ev.Ready {
			bcs = append(bcs, BroadcastSinkState{Ready: ev.Ready, At: ev.At})
		}
		s.Sink = SinkState{Ready: ev.Ready, At: ev.At}

	case MidiSendFailed:
		if s.Sink.Ready {
			s.Sink = SinkState{Ready: false, At: ev.At}
			bcs = append(bcs, BroadcastSinkState{Ready: false, At: ev.At})
		}

	case RequestStateSnapshot:
		cmds = append(cmds, CmdPublishStateSnapshot{
			Snapshot: s.snapshot(at),
			Reply:    ev.Reply,
		})

	default:
		// Unknown event type: no-op.
	}

	return ReduceResult{State: s, Commands: cmds, Broadcasts: bcs}
}

// applyTransition is the translator: one edge in, at most one MIDI
// message out, plus held-note bookkeeping.
func applyTransition(s *SessionState, in LogicalInput, tr Transition, at time.Time) ([]Command, []StateBroadcast) {
	if tr.Kind == TransitionNone {
		return nil, nil
	}

	if specialInputs[in] {
		if in == s.SwitchInput {
			if tr.Kind == TransitionPressed {
				return advanceMode(s, at)
			}
			return nil, nil
		}
		// Control path: consulted on the press edge only.
		if tr.Kind == TransitionPressed {
			if cc, ok := lookupControl(s.Mode.Mode, s.Mode.Variant, in); ok {
				return []Command{CmdControlChange{Controller: cc, Value: digitalVelocity}}, nil
			}
		}
		return nil, nil
	}

	switch tr.Kind {
	case TransitionPressed:
		note, ok := lookupNote(s.Mode.Mode, in)
		if !ok {
			return nil, nil // unmapped in this mode: silence, not an error
		}
		s.Held[in] = note
		return []Command{CmdNoteOn{Note: note, Velocity: tr.Velocity}}, nil

	case TransitionReleased:
		note, ok := s.Held[in]
		if !ok {
			// Released an input whose press never mapped (or was flushed
			// by a mode switch): nothing is sounding for it.
			return nil, nil
		}
		delete(s.Held, in)
		// The user's note-off supersedes any scheduled staccato off for
		// the same note; dropping it prevents a double-send.
		s.Repeat.PendingOffs = s.Repeat.dropOffsFor(note)
		return []Command{CmdNoteOff{Note: note}}, nil
	}

	return nil, nil
}

// advanceMode cycles to the next mode: flush everything sounding first
// (the stuck-note invariant), then swap the mapping and reset the variant
// to the new mode's default.
func advanceMode(s *SessionState, at time.Time) ([]Command, []StateBroadcast) {
	cmds := flushHeld(s)

	mode := nextMode(s.Mode.Mode)
	s.Mode = ActiveModeState{Mode: mode, Variant: defaultVariants[mode]}

	return cmds, []StateBroadcast{
		BroadcastModeChanged{Mode: s.Mode.Mode, Variant: s.Mode.Variant, At: at},
	}
}

// flushHeld emits a note-off for every sounding note and clears the
// held-note set plus any scheduled staccato offs (their notes are a
// subset of the held set, so the flush already closes them).
func flushHeld(s *SessionState) []Command {
	notes := s.heldNotes()
	if len(notes) == 0 && len(s.Repeat.PendingOffs) == 0 {
		return nil
	}

	cmds := make([]Command, 0, len(notes))
	for _, note := range notes {
		cmds = append(cmds, CmdNoteOff{Note: note})
	}

	s.Held = make(map[LogicalInput]uint8)
	s.Repeat.PendingOffs = nil
	return cmds
}
