package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

// ============================================================================
// padctl - Command-line IPC Client
// ============================================================================
// This tool sends events to the padbridge daemon via IPC.
//
// Usage:
//   padctl set-mode pad_controller
//   padctl set-variant with_scenes
//   padctl switch-input touchpad
//   padctl panic
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/padbridge.sock)
// ============================================================================

// Event types (duplicated from the daemon package for a standalone binary)
type Event interface{}

type SetMode struct {
	Mode string `json:"mode"`
}

type SetVariant struct {
	Variant string `json:"variant"`
}

type SetModeSwitchInput struct {
	Input string `json:"input"`
}

type AllNotesOff struct{}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	socketPath := "/tmp/padbridge.sock"

	// Parse arguments
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Check for -socket flag
	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Parse command
	var event Event

	switch args[0] {
	case "set-mode", "mode":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: set-mode requires a mode name\n")
			os.Exit(1)
		}
		event = SetMode{Mode: args[1]}

	case "set-variant", "variant":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: set-variant requires a variant name\n")
			os.Exit(1)
		}
		event = SetVariant{Variant: args[1]}

	case "switch-input":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: switch-input requires an input name\n")
			os.Exit(1)
		}
		event = SetModeSwitchInput{Input: args[1]}

	case "panic", "all-notes-off":
		event = AllNotesOff{}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	// Send event
	if err := sendEvent(socketPath, event); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

func sendEvent(socketPath string, event Event) error {
	// Connect to socket
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	// Marshal event
	data, err := marshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Send event (line-delimited JSON)
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	// Read response
	var response IPCResponse
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	// Check response status
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}

	return nil
}

func marshalEvent(event Event) ([]byte, error) {
	var env EventEnvelope

	switch e := event.(type) {
	case SetMode:
		env.Type = "set_mode"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetMode: %w", err)
		}
		env.Data = data

	case SetVariant:
		env.Type = "set_variant"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetVariant: %w", err)
		}
		env.Data = data

	case SetModeSwitchInput:
		env.Type = "set_switch_input"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetModeSwitchInput: %w", err)
		}
		env.Data = data

	case AllNotesOff:
		env.Type = "all_notes_off"

	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}

	return json.Marshal(env)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `padctl - Control the padbridge daemon via IPC

Usage:
  padctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/padbridge.sock)

Commands:
  set-mode, mode <name>        Select a mapping mode directly
                               (standard_drums, pad_controller, scene_launcher,
                                session_view, sampler_rack)
  set-variant, variant <name>  Select the active mode's variant
                               (plain, with_patterns, with_scenes, with_banks)
  switch-input <input>         Re-designate the mode switch input
                               (ps, create, touchpad, left_stick_click,
                                right_stick_click)
  panic, all-notes-off         Send note-off for everything sounding
  help, -h, --help             Show this help message

Examples:
  padctl set-mode scene_launcher
  padctl variant with_patterns
  padctl -socket /var/run/padbridge.sock panic
`)
}
