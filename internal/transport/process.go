package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/channel"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// File descriptors at which a child process finds its three channels
const (
	ChildCardsFD     = 3
	ChildDecisionsFD = 4
	ChildValuesFD    = 5
)

// Child is a player running in its own process
type Child struct {
	Seat protocol.Seat

	cmd    *exec.Cmd
	logger *log.Logger
	done   chan struct{}

	mu      sync.Mutex
	exitErr error
}

// Wait blocks until the child exits and returns its exit error
func (c *Child) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exitErr != nil {
		return fmt.Errorf("%s process: %w", c.Seat, c.exitErr)
	}
	return nil
}

// Stop kills the child if it is still running
func (c *Child) Stop() error {
	select {
	case <-c.done:
		return nil
	default:
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s process: %w", c.Seat, err)
	}
	<-c.done
	return nil
}

// monitor relays the child's stderr into the parent log, then reaps it
func (c *Child) monitor(stderr io.Reader) {
	defer close(c.done)

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			c.logger.Debug(line)
		}
	}

	err := c.cmd.Wait()
	c.mu.Lock()
	c.exitErr = err
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Player process exited with error", "error", err)
	} else {
		c.logger.Debug("Player process exited")
	}
}

// openProcess creates the pipes for both seats and starts one child per seat.
// Each child inherits the player ends; the parent keeps only the dealer ends.
func openProcess(ctx context.Context, opts Options, logger *log.Logger) (*Fabric, error) {
	exe := opts.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
	}

	pipes, err := openSeatPipes()
	if err != nil {
		return nil, err
	}

	f := &Fabric{Kind: Process}
	for i, p := range pipes {
		f.Dealer[i] = p.dealerLink()
	}

	for i, seat := range protocol.Seats() {
		child, err := startChild(ctx, exe, seat, opts, pipes[i].playerFiles(), logger)

		// The parent's copies of the player ends must go, or the dealer would
		// never see end of stream when a child dies.
		for _, pf := range pipes[i].playerFiles() {
			_ = pf.Close()
		}
		if err != nil {
			_ = f.Close()
			for _, p := range pipes[i+1:] {
				p.closeAll()
			}
			return nil, err
		}
		f.children[i] = child
	}
	return f, nil
}

func startChild(ctx context.Context, exe string, seat protocol.Seat, opts Options, files []*os.File, logger *log.Logger) (*Child, error) {
	args := []string{
		"player",
		"--seat", strconv.Itoa(int(seat)),
		"--rounds", strconv.Itoa(opts.Rounds),
	}
	if opts.LogLevel != "" {
		args = append(args, "--log-level", opts.LogLevel)
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.ExtraFiles = files
	cmd.Env = os.Environ()

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe for %s: %w", seat, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s process: %w", seat, err)
	}

	child := &Child{
		Seat:   seat,
		cmd:    cmd,
		logger: logger.With("seat", seat, "pid", cmd.Process.Pid),
		done:   make(chan struct{}),
	}
	child.logger.Info("Player process started", "command", exe)
	go child.monitor(stderr)
	return child, nil
}

// ChildLink returns the player link of a process started by the process
// transport, built from the inherited file descriptors.
func ChildLink() (actor.PlayerLink, error) {
	open := func(fd int, name string) (*os.File, error) {
		f := os.NewFile(uintptr(fd), name)
		if f == nil {
			return nil, fmt.Errorf("file descriptor %d (%s) was not inherited", fd, name)
		}
		return f, nil
	}

	cards, err := open(ChildCardsFD, "cards")
	if err != nil {
		return actor.PlayerLink{}, err
	}
	decisions, err := open(ChildDecisionsFD, "decisions")
	if err != nil {
		return actor.PlayerLink{}, err
	}
	values, err := open(ChildValuesFD, "values")
	if err != nil {
		return actor.PlayerLink{}, err
	}

	return actor.PlayerLink{
		Cards:     channel.NewStreamReceiver(cards, protocol.CardCodec),
		Decisions: channel.NewStreamSender(decisions, protocol.DecisionCodec),
		Values:    channel.NewStreamSender(values, protocol.ValueCodec),
	}, nil
}
