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

// Package relay provides typed message-passing channels (Anycast,
// Broadcast) and the composition primitives built on top of them
// (Select, Merge, Timer) for a single process, cooperatively scheduled
// by the Go runtime.
package relay

import (
	"context"
	"iter"

	"github.com/fenwick-go/relay/errors"
)

// Sender sends values of type T into a channel.
type Sender[T any] interface {
	// Send delivers msg to the channel.
	//
	// It blocks until msg is accepted, the channel is closed
	// (Sender returns ErrChannelClosed), or ctx is done
	// (Sender returns ctx.Err(), wrapped).
	Send(ctx context.Context, msg T) error
}

// Receiver receives values of type T from a channel.
//
// The two-phase Ready/Consume protocol lets a caller wait for a message
// while simultaneously listening for cancellation or other events (as
// Select does), without risking the loss of a message that arrived the
// instant before it gave up waiting: Ready reserves the message, and
// Consume, which never blocks, claims it.
type Receiver[T any] interface {
	// Ready blocks until a message is available to Consume
	// (Ready returns nil), the receiver is permanently exhausted
	// (Ready returns ErrReceiverStopped), or ctx is done
	// (Ready returns ctx.Err(), wrapped).
	//
	// Calling Ready again before Consuming the previously reserved
	// message is idempotent: it returns nil immediately without
	// reserving a second message. This is what lets a losing Select
	// probe's already-successful Ready survive a concurrent
	// Selector.Close without its message being discarded.
	Ready(ctx context.Context) error

	// Consume returns the message reserved by the most recent successful
	// call to Ready.
	//
	// It panics if Ready has not been called, or if Ready's last result
	// was consumed already, or if Ready's last call did not return nil.
	Consume() (T, error)

	// Receive is Ready immediately followed by Consume, for callers that
	// have no use for the two-phase protocol.
	Receive(ctx context.Context) (T, error)

	// Seq returns an asynchronous iterator over the receiver's messages.
	//
	// Iteration ends cleanly, without yielding an error, when the
	// receiver is exhausted (the underlying ErrReceiverStopped is
	// swallowed). Any other error is yielded to the loop body once,
	// after which iteration ends.
	Seq(ctx context.Context) iter.Seq2[T, error]
}

// receiverCore implements Receive and Seq in terms of Ready and Consume,
// so that every concrete Receiver in this package gets them for free by
// embedding a receiverCore[T] and pointing its self field at itself.
type receiverCore[T any] struct {
	self Receiver[T]
}

func (rc *receiverCore[T]) Receive(ctx context.Context) (T, error) {
	if err := rc.self.Ready(ctx); err != nil {
		var zero T
		return zero, err
	}
	return rc.self.Consume()
}

func (rc *receiverCore[T]) Seq(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			msg, err := rc.Receive(ctx)
			if err != nil {
				if !errors.Is(err, ErrReceiverStopped) {
					yield(msg, err)
				}
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// MapReceiver returns a Receiver that lazily applies f to every message
// obtained from r. It is the Go-native shape of the teacher-inspired
// "Receiver.Map" convenience: since Go methods cannot introduce a new
// type parameter, Map is a package-level generic function instead of a
// method (see SPEC_FULL.md §4.1).
func MapReceiver[T, U any](r Receiver[T], f func(T) U) Receiver[U] {
	mr := &mapReceiver[T, U]{src: r, f: f}
	mr.receiverCore.self = mr
	return mr
}

// mapReceiver is a thin, lazy wrapper: it reserves no buffer of its own
// and applies f only when Consume is called, so a mapReceiver never does
// work for a message that is never actually consumed.
type mapReceiver[T, U any] struct {
	receiverCore[U]
	src Receiver[T]
	f   func(T) U
}

func (mr *mapReceiver[T, U]) Ready(ctx context.Context) error {
	return mr.src.Ready(ctx)
}

func (mr *mapReceiver[T, U]) Consume() (U, error) {
	x, err := mr.src.Consume()
	if err != nil {
		var zero U
		return zero, err
	}
	return mr.f(x), nil
}
