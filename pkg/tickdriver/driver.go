// Package tickdriver adapts the engine's tick-pulse contract to wall-clock
// time. The engine itself never reads a clock — spec.md is explicit that
// only the tick argument to OnTickPulse is ever a time source — so
// something external has to decide when "now" has advanced by one tick.
// Driver is that something: a real-time frame driver for hosts (the
// tinydisplay CLI's "run -live" mode, in this tree) that don't already
// have their own frame loop to hang OnTickPulse off of.
package tickdriver

import (
	"sync"
	"time"
)

// Driver calls pulse once per 1/fps seconds of wall-clock time until
// stopped. It does not try to catch up on missed pulses: like the
// engine's own adaptive lookahead, a slow pulse is simply late, never
// doubled up.
type Driver struct {
	interval time.Duration
	pulse    func()

	mu        sync.Mutex
	running   bool
	stop      chan struct{}
	done      chan struct{}
	lastPulse time.Time
}

// New returns a Driver that calls pulse once per 1/fps seconds. fps must
// be positive.
func New(fps int, pulse func()) *Driver {
	return &Driver{
		interval: time.Second / time.Duration(fps),
		pulse:    pulse,
	}
}

// Start begins pulsing on its own goroutine. Calling Start on an
// already-running Driver is a no-op.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.stop, d.done)
}

func (d *Driver) run(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(d.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			d.mu.Lock()
			d.lastPulse = Now()
			d.mu.Unlock()
			d.pulse()
		}
	}
}

// Stop halts pulsing and waits for the driving goroutine to exit.
// Calling Stop on a non-running Driver is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	stop, done := d.stop, d.done
	d.mu.Unlock()

	close(stop)
	<-done
}

// IsRunning reports whether the Driver is currently pulsing.
func (d *Driver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// LastPulseAt returns the clock time of the most recent pulse, or the
// zero time if none has fired yet.
func (d *Driver) LastPulseAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPulse
}
