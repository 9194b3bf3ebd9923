// Package channel provides the typed, one-directional, FIFO message conduits
// that connect the dealer to each player, along with the in-memory, byte-stream
// and websocket realisations of them.
//
// Send may block until the receiver has consumed earlier messages and never
// drops a message. Receive blocks until a message is available. Messages on
// one channel are delivered in send order; there is no ordering across channels.
package channel

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
)

// ErrClosed is returned when the channel, or the peer at the other end of it,
// has gone away.
var ErrClosed = errors.New("channel closed")

// Sender is the writing end of a channel
type Sender[T any] interface {
	Send(ctx context.Context, msg T) error
}

// Receiver is the reading end of a channel
type Receiver[T any] interface {
	Receive(ctx context.Context) (T, error)
}

// SendCloser is a writing end owned by one actor
type SendCloser[T any] interface {
	Sender[T]
	io.Closer
}

// ReceiveCloser is a reading end owned by one actor
type ReceiveCloser[T any] interface {
	Receiver[T]
	io.Closer
}

// isClosedErr reports whether err means the underlying transport went away
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, net.ErrClosed)
}
