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
	"time"

	"github.com/fenwick-go/relay/concurrency"
	"github.com/fenwick-go/relay/errors"
)

// Anycast is a bounded, multi-producer multi-consumer queue: every
// message sent is delivered to exactly one receiver, chosen among
// whichever receivers are currently waiting.
//
// Anycast is built the way the teacher's concurrency.Mutex and
// concurrency.Once work a lock protecting shared state, plus explicit
// FIFO waiter queues realized as slices of one-shot notification
// channels, rather than sync.Cond (see concurrency/mutex.go,
// concurrency/once.go).
type Anycast[T any] struct {
	cfg      channelConfig
	capacity int

	mu     concurrency.Mutex
	buf    []T
	closed bool

	notEmpty []chan struct{}
	notFull  []chan struct{}
}

// NewAnycast creates an Anycast channel with the given buffer capacity.
//
// It panics if capacity is not positive.
func NewAnycast[T any](capacity int, opts ...Option) *Anycast[T] {
	if capacity <= 0 {
		panic(errors.AutoMsg("anycast capacity must be positive"))
	}
	cfg := newChannelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Anycast[T]{
		cfg:      cfg,
		capacity: capacity,
		mu:       concurrency.NewMutex(),
	}
}

// Name returns the channel's diagnostic name.
func (a *Anycast[T]) Name() string {
	return a.cfg.name
}

func (a *Anycast[T]) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fmt.Sprintf("relay.Anycast[%s](len=%d, cap=%d, closed=%t)",
		a.cfg.name, len(a.buf), a.capacity, a.closed)
}

// Closed reports whether Close has been called.
func (a *Anycast[T]) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Close closes the channel.
//
// Every receiver blocked in Ready is woken with ErrReceiverStopped once
// the buffer has drained, and every sender blocked in Send is woken with
// ErrChannelClosed. After Close, every subsequent call to Send returns
// ErrChannelClosed.
//
// This method can take effect only once; subsequent calls do nothing.
func (a *Anycast[T]) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	wakeAll(&a.notEmpty)
	wakeAll(&a.notFull)
}

// Send delivers msg to the channel, blocking until a slot is free, the
// channel is closed, or ctx is done.
//
// It fails fast with ErrChannelClosed, rather than panicking, whether the
// channel was already closed when Send was called or was closed while
// Send was waiting: a sender racing a concurrent Close must get a
// recoverable error, not a crash (spec §4.1, §7's "Channel-closed" error
// kind).
func (a *Anycast[T]) Send(ctx context.Context, msg T) error {
	a.mu.Lock()
	for {
		if a.closed {
			a.mu.Unlock()
			return errors.AutoWrap(ErrChannelClosed)
		}
		if len(a.buf) < a.capacity {
			a.buf = append(a.buf, msg)
			wakeOne(&a.notEmpty)
			recordMessage(&a.cfg, msg)
			a.mu.Unlock()
			return nil
		}
		waiter := make(chan struct{})
		a.notFull = append(a.notFull, waiter)
		a.mu.Unlock()
		if err := a.waitForSignal(ctx, waiter, &a.notFull, true); err != nil {
			return err
		}
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return errors.AutoWrap(ErrChannelClosed)
		}
	}
}

// NewReceiver returns a new receiving end of the channel. Multiple
// receivers may be created; each message sent is delivered to exactly
// one of them.
func (a *Anycast[T]) NewReceiver() Receiver[T] {
	r := &anycastReceiver[T]{a: a}
	r.receiverCore.self = r
	return r
}

// waitForSignal blocks until waiter is closed, ctx is done, or (for
// sends) a slow-send warning threshold elapses, in which case it logs
// once and keeps waiting. If ctx is done first, the waiter removes
// itself from queue so it does not leak a stale entry.
func (a *Anycast[T]) waitForSignal(
	ctx context.Context,
	waiter chan struct{},
	queue *[]chan struct{},
	warnOnSlow bool,
) error {
	var warnC <-chan time.Time
	if warnOnSlow && a.cfg.slowSendAfter > 0 {
		timer := time.NewTimer(a.cfg.slowSendAfter)
		defer timer.Stop()
		warnC = timer.C
	}
	warned := false
	for {
		select {
		case <-waiter:
			return nil
		case <-ctx.Done():
			a.mu.Lock()
			removeWaiter(queue, waiter)
			a.mu.Unlock()
			return errors.AutoWrap(ctx.Err())
		case <-warnC:
			if !warned {
				warned = true
				a.cfg.logger.Info(
					"relay: Send has been blocked past the slow-send threshold",
					"channel", a.cfg.name,
					"after", a.cfg.slowSendAfter,
				)
			}
		}
	}
}

// anycastReceiver is a receiving end of an Anycast channel.
type anycastReceiver[T any] struct {
	receiverCore[T]

	a          *Anycast[T]
	pending    T
	hasPending bool
}

func (r *anycastReceiver[T]) Ready(ctx context.Context) error {
	if r.hasPending {
		// Idempotent: a Ready already satisfied by a losing selector probe
		// must not be discarded on a subsequent call (spec §8 "Select
		// cancellation safety" — no message eaten by a losing probe).
		return nil
	}
	a := r.a
	a.mu.Lock()
	for {
		if len(a.buf) > 0 {
			r.pending = a.buf[0]
			a.buf = a.buf[1:]
			r.hasPending = true
			wakeOne(&a.notFull)
			a.mu.Unlock()
			return nil
		}
		if a.closed {
			a.mu.Unlock()
			return ErrReceiverStopped
		}
		waiter := make(chan struct{})
		a.notEmpty = append(a.notEmpty, waiter)
		a.mu.Unlock()
		if err := a.waitForSignal(ctx, waiter, &a.notEmpty, false); err != nil {
			return err
		}
		a.mu.Lock()
	}
}

func (r *anycastReceiver[T]) Consume() (T, error) {
	if !r.hasPending {
		panic(errors.AutoMsg("Consume called without a successful prior call to Ready"))
	}
	msg := r.pending
	var zero T
	r.pending = zero
	r.hasPending = false
	return msg, nil
}

// wakeOne wakes the oldest waiter in the queue, if any, preserving FIFO
// order among waiters that are already parked.
func wakeOne(queue *[]chan struct{}) {
	if len(*queue) == 0 {
		return
	}
	w := (*queue)[0]
	*queue = (*queue)[1:]
	close(w)
}

// wakeAll wakes every waiter in the queue and empties it.
func wakeAll(queue *[]chan struct{}) {
	for _, w := range *queue {
		close(w)
	}
	*queue = nil
}

// removeWaiter removes waiter from queue if still present (it will
// already be absent if it was woken by wakeOne/wakeAll first).
func removeWaiter(queue *[]chan struct{}, waiter chan struct{}) {
	for i, w := range *queue {
		if w == waiter {
			*queue = append((*queue)[:i], (*queue)[i+1:]...)
			return
		}
	}
}
