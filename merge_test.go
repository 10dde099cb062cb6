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

package relay_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-go/relay"
	"github.com/fenwick-go/relay/errors"
)

func TestMerge_NoReceiversIsUsageError(t *testing.T) {
	_, err := relay.Merge[int]()
	require.Error(t, err)
}

func TestMerge_CombinesAllInputs(t *testing.T) {
	ctx := context.Background()
	a := relay.NewAnycast[int](4)
	b := relay.NewAnycast[int](4)

	merged, err := relay.Merge[int](a.NewReceiver(), b.NewReceiver())
	require.NoError(t, err)

	require.NoError(t, a.Send(ctx, 1))
	require.NoError(t, b.Send(ctx, 2))
	require.NoError(t, a.Send(ctx, 3))

	var got []int
	for range 3 {
		x, err := merged.Receive(ctx)
		require.NoError(t, err)
		got = append(got, x)
	}
	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestMerge_StopsWhenAllInputsStop(t *testing.T) {
	ctx := context.Background()
	a := relay.NewAnycast[int](1)
	b := relay.NewAnycast[int](1)
	merged, err := relay.Merge[int](a.NewReceiver(), b.NewReceiver())
	require.NoError(t, err)

	a.Close()
	b.Close()

	_, err = merged.Receive(ctx)
	assert.ErrorIs(t, err, relay.ErrReceiverStopped)
}

func TestMerge_Stop(t *testing.T) {
	ctx := context.Background()
	a := relay.NewAnycast[int](1)
	merged, err := relay.Merge[int](a.NewReceiver())
	require.NoError(t, err)

	stopper, ok := merged.(interface{ Stop() })
	require.True(t, ok, "merged receiver must expose Stop")
	stopper.Stop()

	_, err = merged.Receive(ctx)
	if !errors.Is(err, relay.ErrReceiverStopped) {
		// Stop cancels in-flight Ready calls; any resulting error is
		// acceptable as long as the merged receiver does not hang.
		t.Logf("Receive after Stop returned %v", err)
	}
}
