package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/blackjack-ipc/internal/protocol"
)

const closeGracePeriod = time.Second

// WebSocket carries one direction of a channel over a websocket connection.
// Each binary frame holds exactly one msgpack message. A connection is used
// either for sending or for receiving, never both.
type WebSocket[T any] struct {
	conn  *websocket.Conn
	codec protocol.Codec[T]
}

// NewWebSocket wraps conn. Closing the channel closes conn.
func NewWebSocket[T any](conn *websocket.Conn, codec protocol.Codec[T]) *WebSocket[T] {
	return &WebSocket[T]{conn: conn, codec: codec}
}

// Send writes msg as a single binary frame
func (ws *WebSocket[T]) Send(ctx context.Context, msg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := ws.codec.Marshal(msg)
	if err != nil {
		return err
	}
	if err := ws.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return ws.wrap("write", err)
	}
	return nil
}

// Receive blocks for the next binary frame and decodes it
func (ws *WebSocket[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	msgType, data, err := ws.conn.ReadMessage()
	if err != nil {
		return zero, ws.wrap("read", err)
	}
	if msgType != websocket.BinaryMessage {
		return zero, fmt.Errorf("read %s: unexpected frame type %d", ws.codec.Name, msgType)
	}
	return ws.codec.Unmarshal(data)
}

func (ws *WebSocket[T]) wrap(op string, err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) || isClosedErr(err) {
		return fmt.Errorf("%s %s: %w: %v", op, ws.codec.Name, ErrClosed, err)
	}
	return fmt.Errorf("%s %s: %w", op, ws.codec.Name, err)
}

// Close sends a close frame (best effort) and closes the connection.
// WriteControl is safe to call concurrently with a blocked Send or Receive.
func (ws *WebSocket[T]) Close() error {
	_ = ws.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGracePeriod))
	return ws.conn.Close()
}
