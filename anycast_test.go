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
	"sync"
	"testing"
	"time"

	"github.com/fenwick-go/relay"
	"github.com/fenwick-go/relay/errors"
)

func TestAnycast_SendReceive(t *testing.T) {
	ac := relay.NewAnycast[int](2)
	recv := ac.NewReceiver()
	ctx := context.Background()

	if err := ac.Send(ctx, 1); err != nil {
		t.Fatalf("Send(1) returned error: %v", err)
	}
	if err := ac.Send(ctx, 2); err != nil {
		t.Fatalf("Send(2) returned error: %v", err)
	}

	for _, want := range []int{1, 2} {
		got, err := recv.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive returned error: %v", err)
		}
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	}
}

func TestAnycast_ExactlyOnceDelivery(t *testing.T) {
	const n, numReceivers = 200, 4
	ac := relay.NewAnycast[int](8)
	ctx := context.Background()

	var wg sync.WaitGroup
	received := make([][]int, numReceivers)
	var mu sync.Mutex
	for i := range numReceivers {
		recv := ac.NewReceiver()
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			for {
				x, err := recv.Receive(ctx)
				if err != nil {
					if errors.Is(err, relay.ErrReceiverStopped) {
						return
					}
					t.Errorf("receiver %d: unexpected error %v", rank, err)
					return
				}
				mu.Lock()
				received[rank] = append(received[rank], x)
				mu.Unlock()
			}
		}(i)
	}

	go func() {
		for i := range n {
			if err := ac.Send(ctx, i); err != nil {
				t.Errorf("Send(%d) returned error: %v", i, err)
			}
		}
		ac.Close()
	}()
	wg.Wait()

	seen := make(map[int]int, n)
	for _, rs := range received {
		for _, x := range rs {
			seen[x]++
		}
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct values delivered; want %d", len(seen), n)
	}
	for x, count := range seen {
		if count != 1 {
			t.Errorf("value %d delivered %d times; want exactly once", x, count)
		}
	}
}

func TestAnycast_SendBlocksUntilCapacity(t *testing.T) {
	ac := relay.NewAnycast[int](1)
	ctx := context.Background()
	if err := ac.Send(ctx, 1); err != nil {
		t.Fatalf("Send(1) returned error: %v", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := ac.Send(sendCtx, 2); err == nil {
		t.Fatal("Send on a full channel unexpectedly succeeded")
	} else if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got error %v; want wrapped context.DeadlineExceeded", err)
	}
}

func TestAnycast_CloseStopsReceivers(t *testing.T) {
	ac := relay.NewAnycast[int](1)
	recv := ac.NewReceiver()
	ac.Close()

	_, err := recv.Receive(context.Background())
	if !errors.Is(err, relay.ErrReceiverStopped) {
		t.Errorf("got error %v; want ErrReceiverStopped", err)
	}
	if !ac.Closed() {
		t.Error("Closed() returned false after Close")
	}
}

func TestAnycast_SendOnClosedReturnsError(t *testing.T) {
	ac := relay.NewAnycast[int](1)
	ac.Close()
	err := ac.Send(context.Background(), 1)
	if !errors.Is(err, relay.ErrChannelClosed) {
		t.Errorf("got error %v; want ErrChannelClosed", err)
	}
}

func TestAnycast_ConsumeWithoutReadyPanics(t *testing.T) {
	ac := relay.NewAnycast[int](1)
	recv := ac.NewReceiver()
	defer func() {
		if recover() == nil {
			t.Error("Consume without a prior Ready did not panic")
		}
	}()
	_, _ = recv.Consume()
}

func TestNewAnycast_NonPositiveCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewAnycast with non-positive capacity did not panic")
		}
	}()
	relay.NewAnycast[int](0)
}
