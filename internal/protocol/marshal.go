package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/blackjack-ipc/internal/deck"
)

// ErrTrailingData is returned when a frame holds more than one message
var ErrTrailingData = errors.New("trailing data after message")

// Codec encodes and decodes one message type as msgpack
type Codec[T any] struct {
	Name   string
	Encode func(w *msgp.Writer, v T) error
	Decode func(r *msgp.Reader) (T, error)
}

// Cards travel as their one-character rank symbol
var CardCodec = Codec[deck.Card]{
	Name: "card",
	Encode: func(w *msgp.Writer, c deck.Card) error {
		if !c.Valid() {
			return fmt.Errorf("%w: %d", deck.ErrInvalidCard, uint8(c))
		}
		return w.WriteString(c.String())
	},
	Decode: func(r *msgp.Reader) (deck.Card, error) {
		s, err := r.ReadString()
		if err != nil {
			return 0, err
		}
		return deck.ParseCard(s)
	},
}

var DecisionCodec = Codec[Decision]{
	Name: "decision",
	Encode: func(w *msgp.Writer, d Decision) error {
		return w.WriteBool(bool(d))
	},
	Decode: func(r *msgp.Reader) (Decision, error) {
		b, err := r.ReadBool()
		return Decision(b), err
	},
}

var ValueCodec = Codec[FinalValue]{
	Name: "value",
	Encode: func(w *msgp.Writer, v FinalValue) error {
		return w.WriteInt(int(v))
	},
	Decode: func(r *msgp.Reader) (FinalValue, error) {
		n, err := r.ReadInt()
		return FinalValue(n), err
	},
}

// Pool of buffers to avoid allocating per frame
var bufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// Marshal encodes a single message into a standalone frame
func (c Codec[T]) Marshal(v T) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := msgp.NewWriter(buf)
	if err := c.Encode(w, v); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	// Copy out so the pooled buffer is not aliased
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Unmarshal decodes a frame produced by Marshal
func (c Codec[T]) Unmarshal(data []byte) (T, error) {
	br := bytes.NewReader(data)
	r := msgp.NewReader(br)
	v, err := c.Decode(r)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", c.Name, err)
	}
	if r.Buffered()+br.Len() > 0 {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", c.Name, ErrTrailingData)
	}
	return v, nil
}
