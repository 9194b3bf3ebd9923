package channel

import (
	"context"
	"sync"
)

// Chan is an in-process channel backed by a Go channel. A buffer of zero gives
// rendezvous semantics where every Send waits for the matching Receive.
// The same value serves as both endpoints.
type Chan[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewChan creates an in-process channel with the given buffer capacity
func NewChan[T any](buffer int) *Chan[T] {
	if buffer < 0 {
		buffer = 0
	}
	return &Chan[T]{
		ch:   make(chan T, buffer),
		done: make(chan struct{}),
	}
}

// Send enqueues msg, blocking while the buffer is full
func (c *Chan[T]) Send(ctx context.Context, msg T) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.ch <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available. Messages sent before Close are
// still delivered.
func (c *Chan[T]) Receive(ctx context.Context) (T, error) {
	var zero T

	select {
	case msg := <-c.ch:
		return msg, nil
	default:
	}

	select {
	case msg := <-c.ch:
		return msg, nil
	case <-c.done:
		select {
		case msg := <-c.ch:
			return msg, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close marks the channel closed. Blocked senders and receivers return
// ErrClosed. The underlying Go channel is never closed, so a late Send cannot panic.
func (c *Chan[T]) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Len returns the number of buffered messages
func (c *Chan[T]) Len() int {
	return len(c.ch)
}
