// Package transport builds the channel fabric that connects the dealer to both
// players: three one-directional channels per seat, realised over Go
// channels, OS pipes, loopback websockets or pipes inherited by child processes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/channel"
	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// ErrUnknownKind is returned for an unrecognised transport name
var ErrUnknownKind = errors.New("unknown transport")

// Kind selects how the channels are realised
type Kind string

const (
	Chan      Kind = "chan"      // in-process Go channels
	Pipe      Kind = "pipe"      // OS pipes carrying msgpack
	WebSocket Kind = "websocket" // loopback websocket connections carrying msgpack
	Process   Kind = "process"   // OS pipes inherited by one child process per player
)

// Kinds returns every supported transport
func Kinds() []Kind {
	return []Kind{Chan, Pipe, WebSocket, Process}
}

// ParseKind validates a transport name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Options configures Open
type Options struct {
	Kind Kind
	// Buffer is the capacity of each in-process channel. Zero means every send
	// waits for its receive.
	Buffer int
	// Rounds, Executable and LogLevel are passed to child processes
	Rounds     int
	Executable string
	LogLevel   string
	Logger     *log.Logger
}

// Fabric holds both ends of every channel. Players[i] is nil when that seat
// is played by a child process.
type Fabric struct {
	Kind    Kind
	Dealer  [protocol.NumSeats]actor.DealerLink
	Players [protocol.NumSeats]*actor.PlayerLink

	children [protocol.NumSeats]*Child
	closers  []io.Closer

	once     sync.Once
	closeErr error
}

// Open creates the fabric. Any failure is a setup failure and nothing is left open.
func Open(ctx context.Context, opts Options) (*Fabric, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("transport").With("kind", opts.Kind)

	var (
		f   *Fabric
		err error
	)
	switch opts.Kind {
	case Chan, "":
		f = openChan(opts.Buffer)
	case Pipe:
		f, err = openPipe()
	case WebSocket:
		f, err = openWebSocket(ctx, logger)
	case Process:
		f, err = openProcess(ctx, opts, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s transport: %w", opts.Kind, err)
	}

	logger.Info("Channel fabric ready", "channels", protocol.NumSeats*len(protocol.Kinds()))
	return f, nil
}

// Child returns the child process playing seat, or nil if the seat is in-process
func (f *Fabric) Child(seat protocol.Seat) *Child {
	return f.children[seat.Index()]
}

// Close releases every endpoint and stops any child process still running.
// It is safe to call more than once and from another goroutine while actors
// are blocked on the fabric's channels; they are unblocked with an error.
func (f *Fabric) Close() error {
	f.once.Do(func() {
		var errs []error
		for _, link := range f.Dealer {
			errs = append(errs, link.Close())
		}
		for _, link := range f.Players {
			if link != nil {
				errs = append(errs, link.Close())
			}
		}
		for _, child := range f.children {
			if child != nil {
				errs = append(errs, child.Stop())
			}
		}
		for _, c := range f.closers {
			errs = append(errs, c.Close())
		}
		f.closeErr = errors.Join(errs...)
	})
	return f.closeErr
}

func openChan(buffer int) *Fabric {
	f := &Fabric{Kind: Chan}
	for _, seat := range protocol.Seats() {
		cards := channel.NewChan[deck.Card](buffer)
		decisions := channel.NewChan[protocol.Decision](buffer)
		values := channel.NewChan[protocol.FinalValue](buffer)

		f.Dealer[seat.Index()] = actor.DealerLink{Cards: cards, Decisions: decisions, Values: values}
		f.Players[seat.Index()] = &actor.PlayerLink{Cards: cards, Decisions: decisions, Values: values}
	}
	return f
}
