// relay.  A Go message-passing and concurrency toolbox.
// Copyright (C) 2021-2026  The Relay Authors
//
// This file is part of relay.
//
// relay is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/fenwick-go/relay/errors"
)

// MissedTickPolicy decides what a Timer does when Ready is called and
// finds that its deadline has already passed by zero or more whole
// intervals.
//
// It is a stateless pure function of the interval, the current time, and
// the scheduled deadline: it returns waitUntil (when, if ever, the Timer
// should actually deliver this tick — which may be now, if the policy
// chooses to fire immediately), drift (how far behind schedule the Timer
// was found to be, for the delivered message; zero or negative when not
// late), and nextDeadline (the deadline the Timer should aim for on its
// next call).
type MissedTickPolicy func(interval time.Duration, now, deadline time.Time) (waitUntil time.Time, drift time.Duration, nextDeadline time.Time)

// TriggerAllMissed delivers one tick for the deadline that was just found,
// with its actual observed lateness as drift, and advances the deadline by
// exactly one interval — so a caller that let `k` intervals elapse between
// two calls to Ready catches up one tick per call, in a tight back-to-back
// burst, before the Timer is caught up to wall-clock time.
func TriggerAllMissed(interval time.Duration, now, deadline time.Time) (waitUntil time.Time, drift time.Duration, nextDeadline time.Time) {
	return deadline, now.Sub(deadline), deadline.Add(interval)
}

// SkipMissedAndResync delivers a single tick for all the intervals that
// were missed, combined, and resynchronizes the next deadline to the next
// interval boundary on the original schedule — so the phase of the
// schedule is preserved even though some ticks were dropped.
func SkipMissedAndResync(interval time.Duration, now, deadline time.Time) (waitUntil time.Time, drift time.Duration, nextDeadline time.Time) {
	lateness := now.Sub(deadline)
	if lateness < 0 {
		return deadline, 0, deadline.Add(interval)
	}
	missed := lateness / interval
	nextDeadline = deadline.Add((missed + 1) * interval)
	return now, lateness, nextDeadline
}

// SkipMissedAndDrift delivers a single tick for all the intervals that
// were missed, combined, and rebases the schedule on now rather than the
// original deadline — so the Timer's phase permanently shifts by the
// amount it fell behind, instead of resynchronizing to the original grid.
func SkipMissedAndDrift(interval time.Duration, now, deadline time.Time) (waitUntil time.Time, drift time.Duration, nextDeadline time.Time) {
	lateness := now.Sub(deadline)
	if lateness < 0 {
		return deadline, 0, deadline.Add(interval)
	}
	return now, lateness, now.Add(interval)
}

type timerConfig struct {
	logger     logr.Logger
	startDelay time.Duration
}

// TimerOption configures a Timer.
type TimerOption func(*timerConfig)

// WithTimerLogger attaches a logr.Logger that receives one diagnostic
// event per tick delivered late, reporting the observed drift. It never
// changes a Timer's behavior, only its observability.
func WithTimerLogger(logger logr.Logger) TimerOption {
	return func(c *timerConfig) {
		c.logger = logger
	}
}

// WithStartDelay sets when the first deadline falls, relative to the
// moment the Timer is constructed (or last Reset). The default is zero,
// meaning the first call to Ready fires essentially immediately. Negative
// values are treated as zero.
func WithStartDelay(d time.Duration) TimerOption {
	return func(c *timerConfig) {
		if d > 0 {
			c.startDelay = d
		} else {
			c.startDelay = 0
		}
	}
}

// Timer is a drift-aware periodic Receiver: its messages are signed
// drift durations (the difference between the actual wake time and the
// scheduled deadline, positive when late, spec §4.6), not wake
// timestamps. Timer has no background
// goroutine: each call to Ready computes the policy decision itself,
// against the host's monotonic clock (time.Now, whose returned time.Time
// carries a monotonic reading that relay never strips by serializing it
// — see Design Notes §9), which is what lets Reset take effect on a
// Ready call already in flight on another goroutine.
type Timer struct {
	receiverCore[time.Duration]

	interval time.Duration
	policy   MissedTickPolicy
	logger   logr.Logger

	mu       sync.Mutex
	deadline time.Time
	stopped  bool
	wake     chan struct{} // closed and replaced by Reset/Stop to interrupt an in-flight Ready

	pending    time.Duration
	hasPending bool
}

// NewTimer creates a Timer that ticks every interval, using policy to
// decide what to do on a missed tick.
//
// If policy is nil, SkipMissedAndResync is used.
// It panics if interval is not positive.
func NewTimer(interval time.Duration, policy MissedTickPolicy, opts ...TimerOption) *Timer {
	if interval <= 0 {
		panic(errors.AutoMsg("timer interval must be positive"))
	}
	if policy == nil {
		policy = SkipMissedAndResync
	}
	cfg := timerConfig{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &Timer{
		interval: interval,
		policy:   policy,
		logger:   cfg.logger,
		deadline: time.Now().Add(cfg.startDelay),
		wake:     make(chan struct{}),
	}
	t.receiverCore.self = t
	return t
}

// Periodic creates a Timer using the TriggerAllMissed policy, with its
// first deadline one interval from now: every missed interval is
// eventually delivered, one tick per call to Ready, never losing ticks
// and never drifting off the original schedule.
func Periodic(interval time.Duration, opts ...TimerOption) *Timer {
	return NewTimer(interval, TriggerAllMissed, withDefaultStartDelay(interval, opts)...)
}

// Timeout creates a Timer using the SkipMissedAndDrift policy, with its
// first deadline one interval from now: a single tick is ever pending at
// a time, and a slow consumer causes the schedule to drift rather than
// burst.
func Timeout(interval time.Duration, opts ...TimerOption) *Timer {
	return NewTimer(interval, SkipMissedAndDrift, withDefaultStartDelay(interval, opts)...)
}

func withDefaultStartDelay(interval time.Duration, opts []TimerOption) []TimerOption {
	return append([]TimerOption{WithStartDelay(interval)}, opts...)
}

// Ready blocks until the Timer's next deadline (as decided by its
// MissedTickPolicy), ctx is done, or the Timer is stopped.
//
// It is idempotent: calling Ready again before Consuming the pending
// drift returns nil immediately instead of recomputing (spec §8 "Select
// cancellation safety" — no message eaten by a losing probe).
func (t *Timer) Ready(ctx context.Context) error {
	if t.hasPending {
		return nil
	}
	for {
		t.mu.Lock()
		if t.stopped {
			t.mu.Unlock()
			return ErrReceiverStopped
		}
		now := time.Now()
		waitUntil, drift, next := t.policy(t.interval, now, t.deadline)
		if !waitUntil.After(now) {
			t.deadline = next
			t.mu.Unlock()
			if drift > 0 {
				t.logger.Info("relay: timer delivered a late tick",
					"interval", t.interval, "drift", drift)
			}
			t.pending, t.hasPending = drift, true
			return nil
		}
		wake := t.wake
		t.mu.Unlock()

		waker := time.NewTimer(time.Until(waitUntil))
		select {
		case <-waker.C:
			// Deadline reached; loop around and let the policy confirm.
		case <-wake:
			// Reset or Stop changed the schedule; recompute against it.
			waker.Stop()
		case <-ctx.Done():
			waker.Stop()
			return errors.AutoWrap(ctx.Err())
		}
	}
}

func (t *Timer) Consume() (time.Duration, error) {
	if !t.hasPending {
		panic(errors.AutoMsg("Consume called without a successful prior call to Ready"))
	}
	drift := t.pending
	t.hasPending = false
	return drift, nil
}

// Reset reschedules the Timer's next deadline to now + startDelay, and
// revives it if it was stopped. It is safe to call while a Ready call is
// in flight on another goroutine: that call recomputes against the new
// deadline instead of firing against the stale one.
//
// This method can be called repeatedly; each call takes effect
// immediately.
func (t *Timer) Reset(startDelay time.Duration) {
	if startDelay < 0 {
		startDelay = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = false
	t.deadline = time.Now().Add(startDelay)
	close(t.wake)
	t.wake = make(chan struct{})
}

// Stop transitions the Timer to terminated. Ready returns
// ErrReceiverStopped for every subsequent call until Reset revives it.
//
// This method can take effect only once per stopped period; calling it
// again while already stopped does nothing.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.wake)
	t.wake = make(chan struct{})
}

func (t *Timer) String() string {
	return fmt.Sprintf("relay.Timer(interval=%s)", t.interval)
}
