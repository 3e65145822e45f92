package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPendingSlotFulfillOnce(t *testing.T) {
	slot := NewPendingSlot()

	require.True(t, slot.Fulfill(Message{Content: "first"}))
	require.False(t, slot.Fulfill(Message{Content: "second"}))

	msg, err := slot.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", msg.Content)
}

func TestPendingSlotExactlyOneFulfillerWins(t *testing.T) {
	slot := NewPendingSlot()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if slot.Fulfill(Message{Sender: "racer"}) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestPendingSlotAwaitBlocksUntilFulfilled(t *testing.T) {
	slot := NewPendingSlot()

	go func() {
		time.Sleep(20 * time.Millisecond)
		slot.Fulfill(Message{Content: "delayed"})
	}()

	msg, err := slot.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "delayed", msg.Content)
}

func TestPendingSlotAwaitCanceled(t *testing.T) {
	slot := NewPendingSlot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := slot.Await(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
