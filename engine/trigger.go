package engine

import (
	"fmt"
	"math"
	"time"

	"go.bug.st/serial"
)

// Trigger drives a DLP-IO8-G USB trigger box: eight digital lines the EEG
// amplifier records alongside the data. Line 1 is held high for the whole
// trial, per-stimulus lines mark color switches and line 2 is pulsed on
// responses. All methods are no-ops on a nil receiver so the render loop
// never branches on whether a box is connected.
type Trigger struct {
	port serial.Port
}

// OpenTrigger connects to the box, verifies it answers the ping and puts
// it in binary mode.
func OpenTrigger(device string, baud int) (*Trigger, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open trigger %s: %w", device, err)
	}

	t := &Trigger{port: port}
	if !t.Ping() {
		port.Close()
		return nil, fmt.Errorf("trigger %s did not answer ping", device)
	}
	if _, err := port.Write([]byte{0x5C}); err != nil { // backslash: binary mode
		port.Close()
		return nil, fmt.Errorf("trigger %s: set binary mode: %w", device, err)
	}
	return t, nil
}

func (t *Trigger) Close() {
	if t != nil && t.port != nil {
		t.port.Close()
	}
}

// Ping sends the status byte and expects 'Q' back.
func (t *Trigger) Ping() bool {
	if t == nil {
		return false
	}
	if _, err := t.port.Write([]byte{0x27}); err != nil {
		return false
	}
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

// Line set/clear command bytes: ASCII digits raise lines 1..8, the home-row
// letters drop them.
var lineSet = [8]byte{'1', '2', '3', '4', '5', '6', '7', '8'}
var lineClear = [8]byte{'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I'}

// Set raises line n (1..8).
func (t *Trigger) Set(n int) {
	t.write(lineSet, n)
}

// Clear drops line n (1..8).
func (t *Trigger) Clear(n int) {
	t.write(lineClear, n)
}

func (t *Trigger) write(cmds [8]byte, n int) {
	if t == nil || n < 1 || n > 8 {
		return
	}
	if _, err := t.port.Write([]byte{cmds[n-1]}); err != nil {
		fmt.Printf("trigger write error on line %d: %v\n", n, err)
	}
}

// pulseFrames converts a pulse width to a whole number of frames at the
// given refresh rate, at least one. Marker pulses are timed by the frame
// counter so the render loop never sleeps between presentations.
func pulseFrames(refresh float64, d time.Duration) int64 {
	n := int64(math.Ceil(d.Seconds() * refresh))
	if n < 1 {
		n = 1
	}
	return n
}
