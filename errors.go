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

import "github.com/fenwick-go/relay/errors"

// ErrReceiverStopped indicates that a Receiver has been permanently
// exhausted: its channel is closed and all buffered messages have already
// been consumed. It is the clean end-of-stream signal returned by Ready
// and propagated by Seq to end iteration without an error reaching the
// loop body.
var ErrReceiverStopped = errors.AutoNewCustom(
	"receiver stopped: no more messages will arrive",
	errors.PrependFullPkgName,
	0,
)

// ErrChannelClosed indicates that a Send (or Broadcast) could not be
// delivered because the channel is closed — whether it was already
// closed at the time of the call or was closed out from under a
// pending send. A sender racing a concurrent Close is not at fault, so
// this is always reported as an error, never a panic (spec §4.1, §7's
// "Channel-closed" kind).
var ErrChannelClosed = errors.AutoNewCustom(
	"channel closed while send was pending",
	errors.PrependFullPkgName,
	0,
)

// errCompositeFailure is the sentinel wrapped around the result of
// errors.Combine when Select or Merge teardown produces more than one
// failure (spec "Composite failure" kind, see SPEC_FULL.md §4.5).
type errCompositeFailure struct {
	err error
}

func (e *errCompositeFailure) Error() string {
	return "composite teardown failure: " + e.err.Error()
}

func (e *errCompositeFailure) Unwrap() error {
	return e.err
}

// combineTeardownErrors aggregates teardown errors from multiple probes
// or inputs using the teacher's ErrorList (errors.Combine), wrapping the
// result in errCompositeFailure when two or more errors are present so
// callers can distinguish "one probe failed" from "several did."
func combineTeardownErrors(errs ...error) error {
	combined := errors.Combine(errs...)
	if combined == nil {
		return nil
	}
	if el, ok := combined.(errors.ErrorList); ok && el.Len() > 1 {
		return &errCompositeFailure{err: combined}
	}
	return combined
}
