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
	"sync/atomic"

	"github.com/fenwick-go/relay/concurrency"
	"github.com/fenwick-go/relay/errors"
)

// Merge combines rs into a single Receiver that yields every message
// from every input, in the order each input happens to produce it.
//
// One goroutine is spawned per input, each holding a single in-flight
// Ready/Consume pair and feeding a small internal Anycast queue — relay
// dogfoods its own Anycast channel here, the way the teacher's spmd
// package layers higher-level communication on top of its own
// primitives (concurrency/spmd). Merge stops producing once every input
// is exhausted; if an input fails with an error other than
// ErrReceiverStopped, that error is recorded and surfaces (possibly
// combined with others, via errors.Combine) once all inputs have
// stopped.
//
// Merge with zero receivers is a usage error, reported through the
// returned error rather than a panic, since it is detectable at call
// time without touching any receiver.
func Merge[T any](rs ...Receiver[T]) (Receiver[T], error) {
	if len(rs) == 0 {
		return nil, errors.AutoNew("merge requires at least one receiver")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &mergedReceiver[T]{
		q:         NewAnycast[T](len(rs)),
		canceler:  concurrency.NewCancelerFromContext(ctx, cancel),
		remaining: int32(len(rs)),
	}
	m.receiverCore.self = m
	m.qRecv = m.q.NewReceiver()

	for _, r := range rs {
		m.wg.Add(1)
		go m.pump(ctx, r)
	}
	return m, nil
}

type mergedReceiver[T any] struct {
	receiverCore[T]

	q     *Anycast[T]
	qRecv Receiver[T]

	canceler  concurrency.Canceler
	wg        sync.WaitGroup
	remaining int32

	mu       sync.Mutex
	workErrs []error
}

func (m *mergedReceiver[T]) pump(ctx context.Context, r Receiver[T]) {
	defer m.wg.Done()
	for {
		msg, err := r.Receive(ctx)
		if err != nil {
			if !errors.Is(err, ErrReceiverStopped) && !m.canceler.Canceled() {
				m.recordErr(errors.AutoWrap(err))
			}
			break
		}
		if err := m.q.Send(ctx, msg); err != nil {
			break
		}
	}
	if atomic.AddInt32(&m.remaining, -1) == 0 {
		m.q.Close()
	}
}

func (m *mergedReceiver[T]) recordErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workErrs = append(m.workErrs, err)
}

func (m *mergedReceiver[T]) combinedErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.workErrs) == 0 {
		return nil
	}
	return combineTeardownErrors(m.workErrs...)
}

func (m *mergedReceiver[T]) Ready(ctx context.Context) error {
	err := m.qRecv.Ready(ctx)
	if err != nil && errors.Is(err, ErrReceiverStopped) {
		if combined := m.combinedErr(); combined != nil {
			return combined
		}
	}
	return err
}

func (m *mergedReceiver[T]) Consume() (T, error) {
	return m.qRecv.Consume()
}

// Stop cancels every input's in-flight Ready and tears down the
// goroutines feeding this merged receiver. Ready returns
// ErrReceiverStopped (or the combined error of whatever inputs had
// already failed) once all input goroutines have exited.
func (m *mergedReceiver[T]) Stop() {
	m.canceler.Cancel()
}

func (m *mergedReceiver[T]) String() string {
	return fmt.Sprintf("relay.Merge(remaining=%d)", atomic.LoadInt32(&m.remaining))
}
