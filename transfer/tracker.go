package transfer

import (
	"context"
	"time"

	"github.com/tilinna/clock"
)

// Backoff constants for tracker contact retry (§5): initial delay,
// per-attempt multiplier, and the delay ceiling. Progress resets the
// delay back to backoffInitial.
const (
	backoffInitial    = 5 * time.Second
	backoffMultiplier = 1.1
	backoffCap        = 1800 * time.Second
)

// Tracker retries a contact function with exponential backoff, resetting
// on caller-reported progress (§5's "reset on progress").
type Tracker struct {
	clock       clock.Clock
	delay       time.Duration
	lastAttempt time.Time
}

// NewTracker returns a Tracker using clk for timing (clock.Realtime() in
// production, a fake clock in tests).
func NewTracker(clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.Realtime()
	}
	return &Tracker{clock: clk, delay: backoffInitial}
}

// Reset restores the backoff delay to its initial value, called when an
// attempt makes progress (e.g. a tracker report yields new peers).
func (t *Tracker) Reset() {
	t.delay = backoffInitial
}

// LastAttempt returns the clock time of the most recent contact attempt
// (the zero Time if Run has not attempted a contact yet).
func (t *Tracker) LastAttempt() time.Time {
	return t.lastAttempt
}

// NextDelay returns the delay before the next retry and advances the
// backoff state for the attempt after that.
func (t *Tracker) NextDelay() time.Duration {
	d := t.delay
	next := time.Duration(float64(t.delay) * backoffMultiplier)
	if next > backoffCap {
		next = backoffCap
	}
	t.delay = next
	return d
}

// Run calls contact repeatedly until ctx is canceled, waiting
// NextDelay() between attempts (the clock.Clock is used only so tests can
// observe LastAttempt without sleeping; the actual wait uses a stdlib
// timer since clock.Clock's Timer surface isn't exercised here).
func (t *Tracker) Run(ctx context.Context, contact func(ctx context.Context) (progressed bool, err error)) error {
	first := true
	for {
		if !first {
			d := t.NextDelay()
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		t.lastAttempt = t.clock.Now()

		progressed, err := contact(ctx)
		if err != nil {
			continue
		}
		if progressed {
			t.Reset()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
