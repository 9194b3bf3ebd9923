package channel

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/blackjack-ipc/internal/protocol"
)

// StreamSender writes msgpack-encoded messages onto a byte stream such as the
// write end of an OS pipe. Every message is flushed as soon as it is sent.
type StreamSender[T any] struct {
	codec  protocol.Codec[T]
	w      *msgp.Writer
	closer io.Closer
	mu     sync.Mutex
}

// NewStreamSender wraps wc. Closing the sender closes wc.
func NewStreamSender[T any](wc io.WriteCloser, codec protocol.Codec[T]) *StreamSender[T] {
	return &StreamSender[T]{
		codec:  codec,
		w:      msgp.NewWriter(wc),
		closer: wc,
	}
}

// Send encodes msg and flushes it. It blocks while the stream is full.
// A blocked write is interrupted by closing the stream, not by ctx.
func (s *StreamSender[T]) Send(ctx context.Context, msg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.codec.Encode(s.w, msg); err != nil {
		return s.wrap("encode", err)
	}
	if err := s.w.Flush(); err != nil {
		return s.wrap("flush", err)
	}
	return nil
}

func (s *StreamSender[T]) wrap(op string, err error) error {
	if isClosedErr(err) {
		return fmt.Errorf("%s %s: %w: %v", op, s.codec.Name, ErrClosed, err)
	}
	return fmt.Errorf("%s %s: %w", op, s.codec.Name, err)
}

// Close closes the underlying stream. The reader sees end of stream.
func (s *StreamSender[T]) Close() error {
	return s.closer.Close()
}

// StreamReceiver decodes msgpack messages from a byte stream
type StreamReceiver[T any] struct {
	codec  protocol.Codec[T]
	r      *msgp.Reader
	closer io.Closer
	mu     sync.Mutex
}

// NewStreamReceiver wraps rc. Closing the receiver closes rc.
func NewStreamReceiver[T any](rc io.ReadCloser, codec protocol.Codec[T]) *StreamReceiver[T] {
	return &StreamReceiver[T]{
		codec:  codec,
		r:      msgp.NewReader(rc),
		closer: rc,
	}
}

// Receive blocks until a whole message has been read. End of stream is
// reported as ErrClosed.
func (s *StreamReceiver[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.codec.Decode(s.r)
	if err != nil {
		if isClosedErr(err) {
			return zero, fmt.Errorf("decode %s: %w: %v", s.codec.Name, ErrClosed, err)
		}
		return zero, fmt.Errorf("decode %s: %w", s.codec.Name, err)
	}
	return msg, nil
}

// Close closes the underlying stream, unblocking a pending Receive
func (s *StreamReceiver[T]) Close() error {
	return s.closer.Close()
}
