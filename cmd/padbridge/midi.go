package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register rtmidi driver
)

// excludedPortPatterns: virtual/system ports that are never auto-selected.
var excludedPortPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// MidiPort is the production MidiSink: one gomidi output port.
//
// A port that is not (yet) connected is a valid state: Ready() reports
// false and the effects layer drops sends, matching the daemon's
// "not connected is not an error" contract.
type MidiPort struct {
	mu        sync.Mutex
	preferred string // case-insensitive substring; empty picks the first port
	logger    *slog.Logger

	out  drivers.Out
	send func(midi.Message) error
	name string
}

// NewMidiPort creates an unconnected port selector. Call Connect to bind
// it to a real output.
func NewMidiPort(preferred string, logger *slog.Logger) *MidiPort {
	return &MidiPort{preferred: preferred, logger: logger}
}

// Connect scans the available output ports and binds to the preferred
// one (or the first non-excluded port when no preference is set).
func (p *MidiPort) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.send != nil {
		return nil
	}

	out, err := p.pickOutPort()
	if err != nil {
		return err
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open midi out %q: %w", out.String(), err)
	}

	p.out = out
	p.send = send
	p.name = out.String()
	p.logger.Info("midi output connected", "port", p.name)
	return nil
}

func (p *MidiPort) pickOutPort() (drivers.Out, error) {
	outs := midi.GetOutPorts()

	var candidates []drivers.Out
	for _, out := range outs {
		excluded := false
		for _, pat := range excludedPortPatterns {
			if containsCI(out.String(), pat) {
				excluded = true
				break
			}
		}
		if !excluded {
			candidates = append(candidates, out)
		}
	}

	if p.preferred != "" {
		for _, out := range candidates {
			if containsCI(out.String(), p.preferred) {
				return out, nil
			}
		}
		return nil, fmt.Errorf("midi out port matching %q not found", p.preferred)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no midi output ports available")
	}
	return candidates[0], nil
}

// Ready reports whether an output port is bound.
func (p *MidiPort) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.send != nil
}

// Name returns the bound port name, or "" while unconnected.
func (p *MidiPort) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// NoteOn sends a note-on message.
func (p *MidiPort) NoteOn(channel, note, velocity uint8) error {
	return p.sendMsg(midi.NoteOn(channel, note, velocity))
}

// NoteOff sends a note-off message.
func (p *MidiPort) NoteOff(channel, note uint8) error {
	return p.sendMsg(midi.NoteOff(channel, note))
}

// ControlChange sends a control-change message.
func (p *MidiPort) ControlChange(channel, controller, value uint8) error {
	return p.sendMsg(midi.ControlChange(channel, controller, value))
}

func (p *MidiPort) sendMsg(msg midi.Message) error {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()

	if send == nil {
		// Not connected: drop silently; the effects layer already gates
		// on Ready(), this guards direct callers.
		return nil
	}

	err := send(msg)
	if err != nil {
		// A failed send usually means the port went away (device unplugged,
		// synth exited). Unbind so the connector loop rescans.
		p.logger.Warn("midi send failed, unbinding port", "port", p.Name(), "error", err)
		p.Close()
	}
	return err
}

// Close releases the bound output port. The global driver is shut down
// by main via midi.CloseDriver.
func (p *MidiPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil {
		_ = p.out.Close()
	}
	p.out = nil
	p.send = nil
	p.name = ""
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// runMidiConnector keeps the port bound: it rescans on a fixed cadence
// whenever the port is unbound (startup, or after a send failure unbinds
// it) and reports binding transitions to the daemon as events.
func runMidiConnector(ctx context.Context, port *MidiPort, events chan<- Event, logger *slog.Logger) {
	ticker := time.NewTicker(midiRetryInterval)
	defer ticker.Stop()

	wasReady := false

	notify := func(ready bool) {
		select {
		case events <- SinkStateChanged{Ready: ready, At: time.Now()}:
		case <-ctx.Done():
		}
	}

	attempt := func() {
		if port.Ready() {
			return
		}
		if wasReady {
			// Lost the port since last check (send failure unbound it).
			wasReady = false
			notify(false)
		}

		if err := port.Connect(); err != nil {
			logger.Debug("midi connect attempt failed", "error", err)
			return
		}

		wasReady = true
		notify(true)
	}

	attempt()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			attempt()
		}
	}
}
