package transport

import (
	"errors"
	"fmt"
	"os"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/channel"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// seatPipes holds the three OS pipes of one seat
type seatPipes struct {
	cardsR, cardsW         *os.File // dealer writes, player reads
	decisionsR, decisionsW *os.File // player writes, dealer reads
	valuesR, valuesW       *os.File // player writes, dealer reads
}

func newSeatPipes() (*seatPipes, error) {
	var (
		p    seatPipes
		errs []error
	)
	var err error
	if p.cardsR, p.cardsW, err = os.Pipe(); err != nil {
		errs = append(errs, err)
	}
	if p.decisionsR, p.decisionsW, err = os.Pipe(); err != nil {
		errs = append(errs, err)
	}
	if p.valuesR, p.valuesW, err = os.Pipe(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		p.closeAll()
		return nil, fmt.Errorf("create pipe: %w", errors.Join(errs...))
	}
	return &p, nil
}

func (p *seatPipes) closeAll() {
	for _, f := range []*os.File{p.cardsR, p.cardsW, p.decisionsR, p.decisionsW, p.valuesR, p.valuesW} {
		if f != nil {
			_ = f.Close()
		}
	}
}

func (p *seatPipes) dealerLink() actor.DealerLink {
	return actor.DealerLink{
		Cards:     channel.NewStreamSender(p.cardsW, protocol.CardCodec),
		Decisions: channel.NewStreamReceiver(p.decisionsR, protocol.DecisionCodec),
		Values:    channel.NewStreamReceiver(p.valuesR, protocol.ValueCodec),
	}
}

func (p *seatPipes) playerLink() *actor.PlayerLink {
	return &actor.PlayerLink{
		Cards:     channel.NewStreamReceiver(p.cardsR, protocol.CardCodec),
		Decisions: channel.NewStreamSender(p.decisionsW, protocol.DecisionCodec),
		Values:    channel.NewStreamSender(p.valuesW, protocol.ValueCodec),
	}
}

// playerFiles returns the player's ends in child fd order (3, 4, 5)
func (p *seatPipes) playerFiles() []*os.File {
	return []*os.File{p.cardsR, p.decisionsW, p.valuesW}
}

func openSeatPipes() ([protocol.NumSeats]*seatPipes, error) {
	var all [protocol.NumSeats]*seatPipes
	for i := range all {
		p, err := newSeatPipes()
		if err != nil {
			for _, prev := range all[:i] {
				prev.closeAll()
			}
			return all, err
		}
		all[i] = p
	}
	return all, nil
}

func openPipe() (*Fabric, error) {
	pipes, err := openSeatPipes()
	if err != nil {
		return nil, err
	}

	f := &Fabric{Kind: Pipe}
	for i, p := range pipes {
		f.Dealer[i] = p.dealerLink()
		f.Players[i] = p.playerLink()
	}
	return f, nil
}
