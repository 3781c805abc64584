package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// inputEvent mirrors the Linux input event structure:
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// controllerRetryInterval paces reopen attempts after the pad disappears
// (or was never plugged in).
const controllerRetryInterval = 2 * time.Second

// openInputDevices opens every configured event device for reading.
// All succeed or none: a partially-opened pad (buttons without axes)
// would silently lose inputs.
func openInputDevices(paths []string) ([]*os.File, error) {
	var files []*os.File
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			for _, opened := range files {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("open input device %s: %w", path, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// controllerName derives a human-readable session name from the device
// paths. Good enough for status display without an EVIOCGNAME ioctl.
func controllerName(paths []string) string {
	if len(paths) == 0 {
		return "controller"
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, "+")
}

// runControllerReader owns the controller session lifecycle: open the
// devices, announce the connect, decode raw events into reducer events,
// and on device loss announce the disconnect and retry until the pad
// comes back or ctx ends.
func runControllerReader(ctx context.Context, paths []string, events chan<- Event, logger *slog.Logger) error {
	for {
		files, err := openInputDevices(paths)
		if err != nil {
			logger.Warn("controller not available", "error", err, "retry_in", controllerRetryInterval)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(controllerRetryInterval):
				continue
			}
		}

		name := controllerName(paths)
		logger.Info("controller connected", "name", name, "devices", len(files))
		if !sendEvent(ctx, events, ControllerConnected{Name: name}) {
			closeAll(files)
			return nil
		}

		raw := make(chan inputEvent, 64)
		readErr := make(chan error, 1)
		go readInputEvents(files, raw, readErr)

		dec := newPadDecoder()

	session:
		for {
			select {
			case <-ctx.Done():
				// Closing the devices unblocks the reader goroutine.
				closeAll(files)
				return nil

			case ev := <-raw:
				for _, e := range dec.translate(ev) {
					if !sendEvent(ctx, events, e) {
						closeAll(files)
						return nil
					}
				}

			case err := <-readErr:
				logger.Warn("controller lost", "name", name, "error", err)
				closeAll(files)
				if !sendEvent(ctx, events, ControllerDisconnected{}) {
					return nil
				}
				break session
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(controllerRetryInterval):
		}
	}
}

// sendEvent forwards an event to the daemon unless shutdown won the race.
func sendEvent(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
