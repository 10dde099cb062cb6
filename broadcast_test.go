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
	"testing"
	"time"

	"github.com/fenwick-go/relay"
	"github.com/fenwick-go/relay/errors"
)

func TestBroadcast_FanOut(t *testing.T) {
	bc := relay.NewBroadcast[string](4)
	ctx := context.Background()

	r1 := bc.NewReceiver(-1)
	r2 := bc.NewReceiver(-1)
	bc.Broadcast("hello")

	for i, r := range []relay.Receiver[string]{r1, r2} {
		got, err := r.Receive(ctx)
		if err != nil {
			t.Fatalf("receiver %d: Receive returned error: %v", i, err)
		}
		if got != "hello" {
			t.Errorf("receiver %d: got %q; want %q", i, got, "hello")
		}
	}
}

func TestBroadcast_LatestReplay(t *testing.T) {
	bc := relay.NewBroadcast[int](4, relay.WithResendLatest(true))
	bc.Broadcast(1)
	bc.Broadcast(2)

	late := bc.NewReceiver(-1)
	got, err := late.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if got != 2 {
		t.Errorf("late-joining receiver got %d; want the latest message 2", got)
	}
}

func TestBroadcast_NoReplayByDefault(t *testing.T) {
	bc := relay.NewBroadcast[int](4)
	bc.Broadcast(1)
	bc.Broadcast(2)

	late := bc.NewReceiver(-1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := late.Receive(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got error %v; want wrapped context.DeadlineExceeded (no replay without WithResendLatest)", err)
	}
}

func TestBroadcast_OverflowDropsOldest(t *testing.T) {
	bc := relay.NewBroadcast[int](2)
	r := bc.NewReceiver(-1)

	bc.Broadcast(1)
	bc.Broadcast(2)
	bc.Broadcast(3) // buffer holds 2 slots; 1 should be evicted to make room

	ctx := context.Background()
	var got []int
	for range 2 {
		x, err := r.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive returned error: %v", err)
		}
		got = append(got, x)
	}
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("got %v; want [2 3] (oldest message evicted on overflow)", got)
	}
}

func TestBroadcast_CloseStopsReceivers(t *testing.T) {
	bc := relay.NewBroadcast[int](1)
	r := bc.NewReceiver(-1)
	bc.Close()

	_, err := r.Receive(context.Background())
	if !errors.Is(err, relay.ErrReceiverStopped) {
		t.Errorf("got error %v; want ErrReceiverStopped", err)
	}
	if bc.NewReceiver(-1) != nil {
		t.Error("NewReceiver on a closed channel returned a non-nil receiver")
	}
}

func TestBroadcast_WaitForReceiver(t *testing.T) {
	bc := relay.NewBroadcast[int](1)
	done := make(chan error, 1)
	go func() {
		done <- bc.WaitForReceiver(context.Background(), 2)
	}()

	bc.NewReceiver(-1)
	select {
	case err := <-done:
		t.Fatalf("WaitForReceiver returned early with err=%v after only one receiver joined", err)
	case <-time.After(20 * time.Millisecond):
	}

	bc.NewReceiver(-1)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForReceiver returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForReceiver did not return after the second receiver joined")
	}
}

func TestBroadcast_BroadcastOnClosedReturnsError(t *testing.T) {
	bc := relay.NewBroadcast[int](1)
	bc.Close()
	err := bc.Broadcast(1)
	if !errors.Is(err, relay.ErrChannelClosed) {
		t.Errorf("got error %v; want ErrChannelClosed", err)
	}
}
