package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("padbridge v%s\n", version)
	fmt.Println("Game controller to MIDI drum pad daemon")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  padbridge [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that turns a game controller (via Linux input devices) into a")
	fmt.Println("  MIDI drum pad. Buttons and triggers become notes on channel 10,")
	fmt.Println("  designated specials become control changes, and the left stick drives")
	fmt.Println("  note repeat for held pads. Mapping modes are cycled with a designated")
	fmt.Println("  switch input or selected over IPC with padctl.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (flags override file values)")
	fmt.Println()
	fmt.Println("  -controller-device string")
	fmt.Printf("        Linux input event device for the controller (default \"/dev/input/event4\")\n")
	fmt.Println("        The config file can list several devices; this flag replaces the list")
	fmt.Println()
	fmt.Println("  -midi-port string")
	fmt.Println("        Case-insensitive substring of the MIDI output port name")
	fmt.Println("        (default: first non-system port)")
	fmt.Println()
	fmt.Println("  -update-hz int")
	fmt.Printf("        Daemon tick frequency in Hz; bounds note-repeat timing resolution (default %d)\n", defaultUpdateHz)
	fmt.Println()
	fmt.Println("  -switch-input string")
	fmt.Printf("        Input that cycles mapping modes: ps, create, touchpad,\n")
	fmt.Printf("        left_stick_click, right_stick_click (default \"%s\")\n", defaultSwitchInput)
	fmt.Println()
	fmt.Println("  -state-ws-port int")
	fmt.Println("        State WebSocket listener port (default 3210)")
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Printf("        Unix domain socket path for IPC (default \"/tmp/padbridge.sock\")\n")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start with defaults (controller on event4, first MIDI port)")
	fmt.Println("  padbridge")
	fmt.Println()
	fmt.Println("  # Pick a specific controller device and synth port")
	fmt.Println("  padbridge -controller-device /dev/input/event7 -midi-port \"FLUID Synth\"")
	fmt.Println()
	fmt.Println("  # Run from a config file, overriding just the log level")
	fmt.Println("  padbridge -config /etc/padbridge.yaml -log-level debug")
	fmt.Println()
	fmt.Println("  # Change mode from a script")
	fmt.Println("  padctl set-mode scene_launcher")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read access to the input device (run as root or add user to 'input' group)")
	fmt.Println("  - All notes go out on MIDI channel 10 (the GM drum channel)")
	fmt.Println("  - The daemon keeps running while the controller or MIDI port is absent")
	fmt.Println("    and picks them up when they appear")
	fmt.Println()
}

func main() {
	// Check for version/help flags early
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	// Parse command-line flags
	var (
		configPath       = flag.String("config", "", "Path to YAML config file")
		controllerDevice = flag.String("controller-device", "/dev/input/event4", "Linux input event device for the controller")
		midiPort         = flag.String("midi-port", "", "Substring of the MIDI output port name (empty picks the first non-system port)")
		updateHz         = flag.Int("update-hz", defaultUpdateHz, "Daemon tick frequency in Hz")
		switchInput      = flag.String("switch-input", string(defaultSwitchInput), "Input that cycles mapping modes")
		stateWSPort      = flag.Int("state-ws-port", 3210, "State WebSocket listener port")
		ipcSocketPath    = flag.String("ipc-socket", "/tmp/padbridge.sock", "Unix domain socket path for IPC")
		logLevelStr      = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion      = flag.Bool("version", false, "Print version and exit")
		showHelp         = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// Config precedence: defaults, then file, then explicitly-set flags.
	cfg := DefaultConfig()
	if *configPath != "" {
		fileCfg, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = fileCfg
	}

	var ov FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "controller-device":
			ov.ControllerDevice = controllerDevice
		case "midi-port":
			ov.MidiPort = midiPort
		case "update-hz":
			ov.UpdateHz = updateHz
		case "switch-input":
			ov.SwitchInput = switchInput
		case "state-ws-port":
			ov.StateWSPort = stateWSPort
		case "ipc-socket":
			ov.IPCSocketPath = ipcSocketPath
		case "log-level":
			ov.LogLevel = logLevelStr
		}
	})
	ov.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// Validate() already vetted these.
	logLevel, _ := parseLogLevel(cfg.Logging.Level)
	switchIn, _ := parseLogicalInput(cfg.Engine.SwitchInput)

	logger := setupLogger(logLevel)

	// The rtmidi driver is process-global; release it on exit.
	defer midi.CloseDriver()

	port := NewMidiPort(cfg.Midi.Port, logger)
	defer port.Close()

	state := NewSessionState(switchIn)

	// Central event bus: controller samples, IPC events, WS snapshot
	// requests and sink observations all funnel through here.
	events := make(chan Event, 64)
	broadcasts := make(chan StateBroadcast, 128)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// State WebSocket server
	wsServer := NewServer(logger, events, ServerConfig{})
	mux := http.NewServeMux()
	wsServer.Register(mux, "/state")

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.StateWS.Port),
		Handler: mux,
	}

	logger.Debug("starting padbridge", "version", version)
	logger.Debug("configuration",
		"controller_devices", cfg.Controller.Devices,
		"midi_port", cfg.Midi.Port,
		"update_hz", cfg.Engine.UpdateHz,
		"switch_input", cfg.Engine.SwitchInput,
		"state_ws_port", cfg.StateWS.Port,
		"ipc_socket", cfg.IPC.SocketPath)
	logger.Info("listening",
		"controller_devices", cfg.Controller.Devices,
		"ipc", cfg.IPC.SocketPath,
		"state_ws_port", cfg.StateWS.Port,
		"update_rate_hz", cfg.Engine.UpdateHz)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runDaemon(ctx, events, port, state, cfg.Engine.UpdateHz, broadcasts, logger)
		return nil
	})

	g.Go(func() error {
		return runControllerReader(ctx, cfg.Controller.Devices, events, logger)
	})

	g.Go(func() error {
		runMidiConnector(ctx, port, events, logger)
		return nil
	})

	g.Go(func() error {
		return runIPCServer(ctx, cfg.IPC.SocketPath, events, logger)
	})

	g.Go(func() error {
		wsServer.Hub().Run(ctx)
		return nil
	})

	g.Go(func() error {
		RunBroadcaster(ctx, wsServer.Hub(), broadcasts, logger)
		return nil
	})

	g.Go(func() error {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("state ws server: %w", err)
		}
		return nil
	})

	// Shut the HTTP server down when the group context ends.
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}
