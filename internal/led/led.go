// Package led drives the device status LED with hardware abstraction.
// The real implementation writes a sysfs brightness file; the memory
// implementation allows testing and development without hardware.
//
// The status LED on tapnode-class boards is wired active-low: writing
// the inactive level turns it on. Drivers hide that inversion and
// expose logical on/off only.
package led

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrClosed is returned when operating a closed driver.
var ErrClosed = errors.New("led: driver closed")

// Driver controls a single status LED.
type Driver interface {
	// Set switches the LED on or off.
	Set(on bool) error

	// On reports the last state applied through Set.
	On() bool

	// Close releases the LED, forcing it off first.
	Close() error
}

// sysfs levels for an active-low LED.
const (
	levelOn  = "0"
	levelOff = "1"
)

// Sysfs drives an LED through a sysfs brightness file.
type Sysfs struct {
	path   string
	on     bool
	closed bool
}

// OpenSysfs opens the LED behind the given brightness file and forces
// it off, mirroring the power-on state the firmware establishes.
func OpenSysfs(path string) (*Sysfs, error) {
	d := &Sysfs{path: path}
	if err := d.Set(false); err != nil {
		return nil, fmt.Errorf("failed to open LED %s: %w", path, err)
	}
	return d, nil
}

// Set switches the LED by writing the active-low level.
func (d *Sysfs) Set(on bool) error {
	if d.closed {
		return ErrClosed
	}

	level := levelOff
	if on {
		level = levelOn
	}
	if err := os.WriteFile(d.path, []byte(level), 0644); err != nil {
		return fmt.Errorf("failed to write LED level: %w", err)
	}

	d.on = on
	return nil
}

// On reports the last state applied through Set.
func (d *Sysfs) On() bool {
	return d.on
}

// Close forces the LED off and invalidates the driver.
func (d *Sysfs) Close() error {
	if d.closed {
		return nil
	}
	err := d.Set(false)
	d.closed = true
	return err
}

// Memory is an in-memory Driver for tests and hardware-less runs.
// Unlike the sysfs driver it is safe for concurrent use, since tests
// poke it from handler goroutines.
type Memory struct {
	mu     sync.Mutex
	on     bool
	closed bool
}

// NewMemory returns a Memory driver in the off state.
func NewMemory() *Memory {
	return &Memory{}
}

// Set records the requested state.
func (d *Memory) Set(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.on = on
	return nil
}

// On reports the recorded state.
func (d *Memory) On() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// Close forces the LED off and invalidates the driver.
func (d *Memory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.on = false
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *Memory) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Open selects a driver for the given brightness path. An empty path
// selects the memory driver.
func Open(path string) (Driver, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return OpenSysfs(path)
}
