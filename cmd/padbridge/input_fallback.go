//go:build !linux

package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sync"
)

// readInputEvents is the portable fallback: one blocking reader per
// device. evdev is a Linux interface, so this mostly exists to keep the
// daemon buildable elsewhere (tests, cross-compilation checks).
func readInputEvents(files []*os.File, events chan<- inputEvent, readErr chan<- error) {
	var once sync.Once
	reportErr := func(err error) {
		once.Do(func() { readErr <- err })
	}

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(f *os.File) {
			defer wg.Done()

			evSize := binary.Size(inputEvent{})
			buf := make([]byte, evSize)
			reader := bytes.NewReader(buf)

			for {
				if _, err := io.ReadFull(f, buf); err != nil {
					reportErr(err)
					return
				}

				reader.Reset(buf)
				var ev inputEvent
				if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
					// Skip malformed events
					continue
				}

				events <- ev
			}
		}(f)
	}
	wg.Wait()
}
