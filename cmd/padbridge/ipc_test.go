package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// TestIPC_RoundTrip starts the real IPC server on a temp socket, sends
// events through the client helper, and checks they arrive typed.
func TestIPC_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	socketPath := filepath.Join(t.TempDir(), "padbridge-test.sock")
	events := make(chan Event, 8)
	logger := testLogger()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := runIPCServer(ctx, socketPath, events, logger); err != nil {
			t.Errorf("runIPCServer: %v", err)
		}
	}()

	// Wait until the server is accepting.
	waitUntil(t, time.Second, func() bool {
		err := SendIPCEvent(socketPath, AllNotesOff{})
		return err == nil
	}, "IPC server did not come up")
	<-events // drain the probe event

	if err := SendIPCEvent(socketPath, SetMode{Mode: "scene_launcher"}); err != nil {
		t.Fatalf("SendIPCEvent(SetMode): %v", err)
	}
	select {
	case ev := <-events:
		sm, ok := ev.(SetMode)
		if !ok {
			t.Fatalf("expected SetMode, got %T", ev)
		}
		if sm.Mode != "scene_launcher" {
			t.Errorf("mode = %q", sm.Mode)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for SetMode event")
	}

	if err := SendIPCEvent(socketPath, SetModeSwitchInput{Input: "touchpad"}); err != nil {
		t.Fatalf("SendIPCEvent(SetModeSwitchInput): %v", err)
	}
	select {
	case ev := <-events:
		in, ok := ev.(SetModeSwitchInput)
		if !ok {
			t.Fatalf("expected SetModeSwitchInput, got %T", ev)
		}
		if in.Input != "touchpad" {
			t.Errorf("input = %q", in.Input)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for SetModeSwitchInput event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for IPC server to stop")
	}
}

// TestIPC_RejectsUnknownEvent sends a malformed type name and expects the
// daemon error to surface in the client response.
func TestIPC_RejectsUnknownEvent(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"type":"warp_drive","data":{}}`))
	if err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}

// Internal-only events must never be transportable over IPC.
func TestMarshalEvent_RejectsInternalEvents(t *testing.T) {
	if _, err := MarshalEvent(Tick{Now: time.Now()}); err == nil {
		t.Errorf("Tick must not marshal")
	}
	if _, err := MarshalEvent(RequestStateSnapshot{}); err == nil {
		t.Errorf("RequestStateSnapshot must not marshal")
	}
}
