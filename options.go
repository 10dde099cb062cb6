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
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/fenwick-go/relay/concurrency"
)

// channelConfig holds the ambient options shared by Anycast and
// Broadcast: a diagnostic name, an optional logr.Logger, and an optional
// Recorder for post-mortem inspection (see SPEC_FULL.md §2.2, §2.3, §5).
type channelConfig struct {
	name          string
	logger        logr.Logger
	recorder      any // concurrency.Recorder[T], type-erased until the channel's T is known
	slowSendAfter time.Duration
	resendLatest  bool
}

func newChannelConfig() channelConfig {
	return channelConfig{
		name:          uuid.NewString(),
		logger:        logr.Discard(),
		slowSendAfter: 3 * time.Second,
	}
}

// Option configures an Anycast or Broadcast channel.
type Option func(*channelConfig)

// WithName assigns a stable diagnostic name to a channel, overriding the
// default uuid.NewString() identity (SPEC_FULL.md §2.3).
func WithName(name string) Option {
	return func(c *channelConfig) {
		c.name = name
	}
}

// WithLogger attaches a logr.Logger for diagnostic events: slow-consumer
// warnings on Anycast. Broadcast accepts the option but logs nothing. It
// never changes a channel's behavior, only its observability
// (SPEC_FULL.md §2.2).
func WithLogger(logger logr.Logger) Option {
	return func(c *channelConfig) {
		c.logger = logger
	}
}

// WithSlowSendWarning sets how long Send must block on a full channel
// before a single warning is logged (default 3s). It has no effect
// unless a logger is also attached via WithLogger.
func WithSlowSendWarning(d time.Duration) Option {
	return func(c *channelConfig) {
		if d > 0 {
			c.slowSendAfter = d
		}
	}
}

// WithRecorder attaches rec so every message sent is also appended to
// rec, for post-mortem inspection in tests and diagnostics
// (SPEC_FULL.md §5). rec is typically a concurrency.Recorder[T] whose
// element type matches the channel's message type.
func WithRecorder[Message any](rec concurrency.Recorder[Message]) Option {
	return func(c *channelConfig) {
		c.recorder = rec
	}
}

// WithResendLatest makes a new Broadcast receiver prime its buffer with
// the channel's most recently sent message, if any, at the moment it
// subscribes (spec §4.3's "optional latest-message replay to newcomers").
// It has no effect on Anycast. Off by default.
func WithResendLatest(resend bool) Option {
	return func(c *channelConfig) {
		c.resendLatest = resend
	}
}

func recordMessage[Message any](c *channelConfig, msg Message) {
	if rec, ok := c.recorder.(concurrency.Recorder[Message]); ok {
		rec.Record(msg)
	}
}
