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

	"github.com/fenwick-go/relay/concurrency"
	"github.com/fenwick-go/relay/errors"
)

// Selected is the result of one call to Selector.Next: the value
// produced by whichever input receiver was ready, and the identity of
// that receiver.
type Selected[T any] struct {
	value  T
	source Receiver[T]
}

// Value returns the selected message.
func (s Selected[T]) Value() T {
	return s.value
}

// Source returns the receiver the message came from, for use with
// SelectedFrom.
func (s Selected[T]) Source() Receiver[T] {
	return s.source
}

// SelectedFrom reports whether sel was produced by r.
//
// Because Receiver[T] is monomorphic in T (unlike a dynamically typed
// host's heterogeneous receiver set), this is relay's Go-native
// approximation of an exhaustiveness check over a selector's inputs: a
// multi-type selection is expressed by first mapping heterogeneous
// receivers through MapReceiver into a common sum-type T, then
// selecting over the mapped receivers and switching on the payload
// after confirming its source (see SPEC_FULL.md §4.5).
func SelectedFrom[T any](sel Selected[T], r Receiver[T]) bool {
	return sel.source == r
}

// Selector multiplexes a fixed set of same-typed receivers, picking one
// ready input per call to Next in round-robin order so that no input is
// starved by a persistently busy sibling (spec §8 "Select fairness").
//
// One goroutine per input keeps a Ready call outstanding at all times —
// it is never cancelled between iterations of Next, only torn down by
// Close — so a message that becomes available between two calls to Next
// is not missed.
type Selector[T any] struct {
	inputs []Receiver[T]

	mu      sync.Mutex
	ready   []bool
	stopped []bool
	errs    []error
	proceed []chan struct{}
	wake    chan struct{}
	start   int

	canceler concurrency.Canceler
	stopOnce concurrency.Once
	closeErr error
	stopC    chan struct{}
	wg       sync.WaitGroup
}

// Select creates a Selector over rs.
//
// Select with zero receivers is a usage error, reported through the
// returned error rather than a panic.
func Select[T any](rs ...Receiver[T]) (*Selector[T], error) {
	if len(rs) == 0 {
		return nil, errors.AutoNew("select requires at least one receiver")
	}
	ctx, cancel := context.WithCancel(context.Background())
	n := len(rs)
	s := &Selector[T]{
		inputs:   append([]Receiver[T](nil), rs...),
		ready:    make([]bool, n),
		stopped:  make([]bool, n),
		errs:     make([]error, n),
		proceed:  make([]chan struct{}, n),
		wake:     make(chan struct{}, 1),
		canceler: concurrency.NewCancelerFromContext(ctx, cancel),
		stopC:    make(chan struct{}),
	}
	for i := range s.proceed {
		s.proceed[i] = make(chan struct{})
	}
	s.stopOnce = concurrency.NewOnce(s.teardown)
	s.wg.Add(n)
	for i := range s.inputs {
		go s.probe(ctx, i)
	}
	return s, nil
}

func (s *Selector[T]) probe(ctx context.Context, i int) {
	defer s.wg.Done()
	r := s.inputs[i]
	for {
		select {
		case <-s.stopC:
			return
		default:
		}

		err := r.Ready(ctx)

		s.mu.Lock()
		s.ready[i], s.errs[i] = true, err
		s.mu.Unlock()
		select {
		case s.wake <- struct{}{}:
		default:
		}

		if err != nil && errors.Is(err, ErrReceiverStopped) {
			return
		}

		select {
		case <-s.proceed[i]:
		case <-s.stopC:
			return
		}
	}
}

// Next blocks until one input is ready, ctx is done, or every input has
// permanently stopped.
func (s *Selector[T]) Next(ctx context.Context) (Selected[T], error) {
outer:
	for {
		s.mu.Lock()
		n := len(s.inputs)
		for k := 0; k < n; k++ {
			idx := (s.start + k) % n
			if s.stopped[idx] || !s.ready[idx] {
				continue
			}
			err := s.errs[idx]
			s.ready[idx] = false
			s.start = (idx + 1) % n

			if err != nil {
				if errors.Is(err, ErrReceiverStopped) {
					s.stopped[idx] = true
					allStopped := s.allStoppedLocked()
					s.mu.Unlock()
					if allStopped {
						return Selected[T]{}, ErrReceiverStopped
					}
					continue outer
				}
				source := s.inputs[idx]
				s.mu.Unlock()
				s.letProceed(idx)
				return Selected[T]{source: source}, errors.AutoWrap(err)
			}

			source := s.inputs[idx]
			s.mu.Unlock()
			msg, cerr := source.Consume()
			s.letProceed(idx)
			return Selected[T]{value: msg, source: source}, cerr
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-ctx.Done():
			return Selected[T]{}, errors.AutoWrap(ctx.Err())
		}
	}
}

func (s *Selector[T]) letProceed(idx int) {
	select {
	case s.proceed[idx] <- struct{}{}:
	case <-s.stopC:
	}
}

func (s *Selector[T]) allStoppedLocked() bool {
	for _, stopped := range s.stopped {
		if !stopped {
			return false
		}
	}
	return true
}

// Close tears down every probe goroutine, cancelling whichever Ready
// call each one has outstanding, and returns the composite of the
// probes' last errors other than ErrReceiverStopped and context
// cancellation (errors.Combine, per spec §4.5's "composite error"
// requirement); it returns nil if there are none. It can take effect only
// once; subsequent calls return the same result as the first (wired on
// concurrency.Once, the teacher's channel-based one-shot primitive, the
// same way concurrency.Canceler already builds its own onceCanceler
// variant on top of it).
func (s *Selector[T]) Close() error {
	s.stopOnce.Do()
	return s.closeErr
}

// teardown is the body run exactly once by s.stopOnce.
func (s *Selector[T]) teardown() {
	s.canceler.Cancel()
	close(s.stopC)
	s.wg.Wait()

	s.mu.Lock()
	var errs []error
	for _, e := range s.errs {
		if e != nil && !errors.Is(e, ErrReceiverStopped) && !errors.Is(e, context.Canceled) {
			errs = append(errs, e)
		}
	}
	s.mu.Unlock()
	s.closeErr = combineTeardownErrors(errs...)
}

func (s *Selector[T]) String() string {
	return fmt.Sprintf("relay.Selector(inputs=%d)", len(s.inputs))
}
