package broker

import (
	"context"
	"sync/atomic"
)

// PendingSlot is a one-shot delivery container backing a single long poll.
// It is either empty-and-awaited or fulfilled with exactly one message.
// Exactly one fulfiller wins; later attempts report false and have no effect.
// A slot may also be discarded unfulfilled, in which case its awaiter only
// returns when its context is done.
type PendingSlot struct {
	fulfilled atomic.Bool
	ch        chan Message
}

// NewPendingSlot creates an empty slot ready to be awaited.
func NewPendingSlot() *PendingSlot {
	return &PendingSlot{ch: make(chan Message, 1)}
}

// Fulfill completes the slot with msg. It returns false if the slot was
// already fulfilled.
func (s *PendingSlot) Fulfill(msg Message) bool {
	if !s.fulfilled.CompareAndSwap(false, true) {
		return false
	}
	s.ch <- msg
	return true
}

// Fulfilled reports whether the slot has been completed.
func (s *PendingSlot) Fulfilled() bool {
	return s.fulfilled.Load()
}

// Await blocks until the slot is fulfilled or ctx is done. It is intended for
// a single reader, the long-poll handler that installed the slot.
func (s *PendingSlot) Await(ctx context.Context) (Message, error) {
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
