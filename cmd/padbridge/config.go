package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the padbridge daemon.
//
// The config file is the primary configuration surface; flags exist for
// small overrides and environments where a file is awkward. Defaults and
// validation are centralized here so the rest of the code can assume a
// well-formed config.
type Config struct {
	// Controller input configuration
	Controller ControllerConfig `yaml:"controller"`

	// MIDI output configuration
	Midi MidiConfig `yaml:"midi"`

	// Translation engine configuration
	Engine EngineConfig `yaml:"engine"`

	// State WebSocket server (external UI feed)
	StateWS StateWSConfig `yaml:"state_ws"`

	// IPC configuration (padctl and scripting)
	IPC IPCConfig `yaml:"ipc"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type ControllerConfig struct {
	// Devices lists the evdev event devices making up the pad.
	Devices []string `yaml:"devices"`
}

type MidiConfig struct {
	// Port is a case-insensitive substring of the desired output port
	// name. Empty picks the first non-system port.
	Port string `yaml:"port,omitempty"`
}

type EngineConfig struct {
	// UpdateHz is the daemon tick cadence. It bounds the timing
	// resolution of note repeat and the staccato note-offs.
	UpdateHz int `yaml:"update_hz"`

	// SwitchInput designates which special input advances the mode.
	// One of: ps, create, touchpad, left_stick_click, right_stick_click.
	SwitchInput string `yaml:"switch_input"`
}

type StateWSConfig struct {
	Port int `yaml:"port"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go defaults and current CLI defaults.
func DefaultConfig() Config {
	return Config{
		Controller: ControllerConfig{
			Devices: []string{"/dev/input/event4"},
		},
		Midi: MidiConfig{
			Port: "",
		},
		Engine: EngineConfig{
			UpdateHz:    defaultUpdateHz,
			SwitchInput: string(defaultSwitchInput),
		},
		StateWS: StateWSConfig{
			Port: 3210,
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/padbridge.sock",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file.
//
// Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Only whitespace/comments are allowed after the document.
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies flag values on top of a loaded config. Flags pass
// pointers; each override is only applied if the pointer is non-nil.
type FlagOverrides struct {
	ControllerDevice *string

	MidiPort *string

	UpdateHz    *int
	SwitchInput *string

	StateWSPort   *int
	IPCSocketPath *string

	LogLevel *string
}

// Apply merges the overrides into cfg. If an override pointer is nil, it
// is ignored; otherwise the value is applied even if it is a zero value.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.ControllerDevice != nil {
		cfg.Controller.Devices = []string{*o.ControllerDevice}
	}
	if o.MidiPort != nil {
		cfg.Midi.Port = *o.MidiPort
	}
	if o.UpdateHz != nil {
		cfg.Engine.UpdateHz = *o.UpdateHz
	}
	if o.SwitchInput != nil {
		cfg.Engine.SwitchInput = *o.SwitchInput
	}
	if o.StateWSPort != nil {
		cfg.StateWS.Port = *o.StateWSPort
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// Intended to be called after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	if len(c.Controller.Devices) == 0 {
		return errors.New("controller.devices must list at least one input device")
	}
	for _, d := range c.Controller.Devices {
		if strings.TrimSpace(d) == "" {
			return errors.New("controller.devices must not contain empty paths")
		}
	}

	if c.Engine.UpdateHz <= 0 || c.Engine.UpdateHz > 1000 {
		return errors.New("engine.update_hz must be between 1 and 1000")
	}

	in, err := parseLogicalInput(c.Engine.SwitchInput)
	if err != nil {
		return fmt.Errorf("engine.switch_input: %w", err)
	}
	if !switchableInputs[in] {
		return fmt.Errorf("engine.switch_input: %q cannot be a mode switch (must be one of ps, create, touchpad, left_stick_click, right_stick_click)", in)
	}

	if c.StateWS.Port <= 0 || c.StateWS.Port > 65535 {
		return errors.New("state_ws.port must be a valid TCP port")
	}

	if strings.TrimSpace(c.IPC.SocketPath) == "" {
		return errors.New("ipc.socket_path must not be empty")
	}

	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			if p == "~" {
				return home
			}
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
