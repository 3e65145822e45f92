package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAssignsColor(t *testing.T) {
	r := NewRegistry()

	color, err := r.Register("alice")
	require.NoError(t, err)
	require.Equal(t, "Red", color)

	got, ok := r.Color("alice")
	require.True(t, ok)
	require.Equal(t, color, got)
}

func TestRegistryRegisterConflict(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("alice")
	require.NoError(t, err)

	_, err = r.Register("alice")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegistryConcurrentRegisterYieldsOneSuccess(t *testing.T) {
	r := NewRegistry()

	var successes, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Register("alice"); err == nil {
				successes.Add(1)
			} else {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), successes.Load())
	require.Equal(t, int32(1), conflicts.Load())
}

func TestRegistryBeginLongPollCreatesUnknownSession(t *testing.T) {
	r := NewRegistry()

	slot := r.BeginLongPoll("ghost")
	require.NotNil(t, slot)

	_, ok := r.Color("ghost")
	require.True(t, ok, "polling should create a session with a color")
}

func TestRegistryRepollAbandonsFirstSlot(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("alice")
	require.NoError(t, err)

	first := r.BeginLongPoll("alice")
	second := r.BeginLongPoll("alice")
	require.NotSame(t, first, second)

	require.True(t, r.Fulfill("alice", Message{Content: "hi"}))

	// Only the second slot receives the delivery.
	msg, err := second.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hi", msg.Content)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = first.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistryHasPendingSlot(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("alice")
	require.NoError(t, err)
	require.False(t, r.HasPendingSlot("alice"))

	r.BeginLongPoll("alice")
	require.True(t, r.HasPendingSlot("alice"))

	require.True(t, r.Fulfill("alice", Message{Content: "hi"}))
	require.False(t, r.HasPendingSlot("alice"))
}

func TestRegistryFulfillWithoutSession(t *testing.T) {
	r := NewRegistry()
	require.False(t, r.Fulfill("nobody", Message{}))
}

func TestRegistryFulfillWithoutSlot(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("alice")
	require.NoError(t, err)

	require.False(t, r.Fulfill("alice", Message{}))
}

func TestRegistryRemoveAbandonsSlot(t *testing.T) {
	r := NewRegistry()
	slot := r.BeginLongPoll("alice")

	r.Remove("alice")
	require.False(t, r.Fulfill("alice", Message{}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := slot.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistryListOthers(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := r.Register(name)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"alice", "bob"}, r.ListOthers("carol"))
	require.Equal(t, []string{"alice", "bob", "carol"}, r.ListOthers("nobody"))
}
