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
	"runtime"

	"github.com/fenwick-go/relay/concurrency"
	"github.com/fenwick-go/relay/errors"
)

// Broadcast fans messages out to every subscribed receiver, each with
// its own bounded buffer. It plays the role the teacher's original
// concurrency.Broadcaster[Message] played, generalized with a
// lossy-overflow policy (the oldest buffered message is dropped to make
// room, rather than blocking or growing unbounded), optional
// latest-message replay for newly joined receivers (WithResendLatest),
// and weak receiver tracking so an abandoned receiver is reclaimed
// without an explicit unsubscribe call.
type Broadcast[T any] struct {
	cfg channelConfig

	mu        concurrency.Mutex
	receivers map[uint64]*broadcastRecord[T]
	nextID    uint64
	closed    concurrency.OnceIndicator
	waiters   []chan struct{} // watchers of WaitForReceiver

	latest    T
	hasLatest bool
	bufSize   int
}

type broadcastRecord[T any] struct {
	id   uint64
	name string
	ch   chan T
}

// NewBroadcast creates a Broadcast channel.
//
// bufSize is the default per-receiver buffer size; non-positive values
// mean unbuffered (a receiver that is not actively waiting in Ready
// misses every message sent while it is away, and WithResendLatest
// replay never reaches an unbuffered receiver).
func NewBroadcast[T any](bufSize int, opts ...Option) *Broadcast[T] {
	if bufSize < 0 {
		bufSize = 0
	}
	cfg := newChannelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Broadcast[T]{
		cfg:       cfg,
		mu:        concurrency.NewMutex(),
		receivers: make(map[uint64]*broadcastRecord[T]),
		closed:    concurrency.NewOnceIndicator(),
		bufSize:   bufSize,
	}
}

// Name returns the channel's diagnostic name.
func (b *Broadcast[T]) Name() string {
	return b.cfg.name
}

func (b *Broadcast[T]) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("relay.Broadcast[%s](receivers=%d, closed=%t)",
		b.cfg.name, len(b.receivers), b.closed.Test())
}

// Closed reports whether Close has been called.
func (b *Broadcast[T]) Closed() bool {
	return b.closed.Test()
}

// ReceiverCount reports the number of receivers currently subscribed.
func (b *Broadcast[T]) ReceiverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.receivers)
}

// Close closes the channel. Every subscribed receiver's Ready will
// return ErrReceiverStopped once its buffer has drained, and every
// subsequent call to Broadcast returns ErrChannelClosed.
//
// This method can take effect only once; subsequent calls do nothing.
func (b *Broadcast[T]) Close() {
	b.closed.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, rec := range b.receivers {
			close(rec.ch)
		}
		b.receivers = nil
		wakeAll(&b.waiters)
	})
}

// Broadcast sends x to every subscribed receiver.
//
// It never blocks: a receiver whose buffer is full has its oldest
// buffered message dropped to make room for x (spec §4.3's lossy
// overflow policy, decided in SPEC_FULL.md §7(a)).
//
// It fails fast with ErrChannelClosed, rather than panicking, if the
// channel is already closed when Broadcast is called: a sender racing a
// concurrent Close must get a recoverable error, not a crash (spec §4.1,
// §7's "Channel-closed" error kind).
func (b *Broadcast[T]) Broadcast(x T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Test() {
		return errors.AutoWrap(ErrChannelClosed)
	}
	b.latest, b.hasLatest = x, true
	for _, rec := range b.receivers {
		select {
		case rec.ch <- x:
		default:
			select {
			case <-rec.ch:
			default:
			}
			select {
			case rec.ch <- x:
			default:
				// Zero-capacity receiver buffer: x simply misses it.
			}
		}
	}
	recordMessage(&b.cfg, x)
	return nil
}

// NewReceiver subscribes a new receiver to the channel.
//
// bufSize overrides the channel's default per-receiver buffer size;
// negative values use the default. It returns nil if the channel is
// already closed.
//
// If the channel was constructed with WithResendLatest(true) and a
// message has already been sent, the new receiver's buffer is primed
// with that one message (spec §4.3 "optional latest-message replay").
//
// The returned Receiver is weakly tracked: if it is dropped without
// ever being explicitly released, the channel still reclaims its
// record once the Go runtime garbage-collects the handle (spec §4.3
// "Receiver garbage collection", SPEC_FULL.md §4.3).
func (b *Broadcast[T]) NewReceiver(bufSize int) Receiver[T] {
	if bufSize < 0 {
		bufSize = b.bufSize
	}
	b.mu.Lock()
	if b.closed.Test() {
		b.mu.Unlock()
		return nil
	}
	id := b.nextID
	b.nextID++
	ch := make(chan T, bufSize)
	rec := &broadcastRecord[T]{
		id:   id,
		name: fmt.Sprintf("%s#%d", b.cfg.name, id),
		ch:   ch,
	}
	b.receivers[id] = rec
	if b.cfg.resendLatest && b.hasLatest {
		select {
		case ch <- b.latest:
		default:
		}
	}
	wakeAll(&b.waiters)
	b.mu.Unlock()

	r := &broadcastReceiver[T]{b: b, id: id, ch: ch}
	r.receiverCore.self = r
	runtime.AddCleanup(r, func(id uint64) { b.forget(id) }, id)
	return r
}

// WaitForReceiver blocks until at least count receivers are subscribed,
// the channel is closed (WaitForReceiver returns ErrReceiverStopped), or
// ctx is done.
func (b *Broadcast[T]) WaitForReceiver(ctx context.Context, count int) error {
	for {
		b.mu.Lock()
		if len(b.receivers) >= count {
			b.mu.Unlock()
			return nil
		}
		if b.closed.Test() {
			b.mu.Unlock()
			return ErrReceiverStopped
		}
		waiter := make(chan struct{})
		b.waiters = append(b.waiters, waiter)
		b.mu.Unlock()
		select {
		case <-waiter:
		case <-ctx.Done():
			b.mu.Lock()
			removeWaiter(&b.waiters, waiter)
			b.mu.Unlock()
			return errors.AutoWrap(ctx.Err())
		}
	}
}

func (b *Broadcast[T]) forget(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.receivers[id]; ok {
		close(rec.ch)
		delete(b.receivers, id)
		wakeAll(&b.waiters)
	}
}

// broadcastReceiver is a receiving end of a Broadcast channel.
type broadcastReceiver[T any] struct {
	receiverCore[T]

	b  *Broadcast[T]
	id uint64
	ch chan T

	pending    T
	hasPending bool
}

func (r *broadcastReceiver[T]) Ready(ctx context.Context) error {
	if r.hasPending {
		// Idempotent: a Ready already satisfied by a losing selector probe
		// must not be discarded on a subsequent call (spec §8 "Select
		// cancellation safety" — no message eaten by a losing probe).
		return nil
	}
	select {
	case msg, ok := <-r.ch:
		if !ok {
			return ErrReceiverStopped
		}
		r.pending = msg
		r.hasPending = true
		return nil
	case <-ctx.Done():
		return errors.AutoWrap(ctx.Err())
	}
}

func (r *broadcastReceiver[T]) Consume() (T, error) {
	if !r.hasPending {
		panic(errors.AutoMsg("Consume called without a successful prior call to Ready"))
	}
	msg := r.pending
	var zero T
	r.pending = zero
	r.hasPending = false
	return msg, nil
}

// Leave unsubscribes the receiver immediately, instead of waiting for
// the garbage collector to reclaim it. It is idempotent.
func (r *broadcastReceiver[T]) Leave() {
	r.b.forget(r.id)
}
