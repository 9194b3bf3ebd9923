package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/channel"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// endpoint identifies one logical channel
type endpoint struct {
	seat protocol.Seat
	kind protocol.Kind
}

func (e endpoint) path() string {
	return fmt.Sprintf("/seat/%d/%s", int(e.seat), e.kind)
}

func parseEndpoint(seat, kind string) (endpoint, error) {
	n, err := strconv.Atoi(seat)
	if err != nil || !protocol.Seat(n).Valid() {
		return endpoint{}, fmt.Errorf("invalid seat %q", seat)
	}
	k, err := protocol.ParseKind(kind)
	if err != nil {
		return endpoint{}, err
	}
	return endpoint{seat: protocol.Seat(n), kind: k}, nil
}

func allEndpoints() []endpoint {
	var eps []endpoint
	for _, seat := range protocol.Seats() {
		for _, kind := range protocol.Kinds() {
			eps = append(eps, endpoint{seat: seat, kind: kind})
		}
	}
	return eps
}

type acceptedConn struct {
	ep   endpoint
	conn *websocket.Conn
}

// openWebSocket hosts a loopback server for the dealer's ends and dials one
// connection per logical channel for the players' ends. The listener is shut
// down once all six connections are established.
func openWebSocket(ctx context.Context, logger *log.Logger) (*Fabric, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	eps := allEndpoints()
	accepted := make(chan acceptedConn, len(eps))
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	router := mux.NewRouter()
	router.HandleFunc("/seat/{seat}/{kind}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		ep, err := parseEndpoint(vars["seat"], vars["kind"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Failed to upgrade connection", "error", err, "path", r.URL.Path)
			return
		}
		accepted <- acceptedConn{ep: ep, conn: conn}
	}).Methods(http.MethodGet)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Websocket server failed", "error", err)
		}
	}()
	// Upgraded connections are hijacked, so closing the server leaves them open
	defer srv.Close()

	var (
		mu      sync.Mutex
		clients = make(map[endpoint]*websocket.Conn, len(eps))
		servers = make(map[endpoint]*websocket.Conn, len(eps))
	)
	cleanup := func() {
		for _, m := range []map[endpoint]*websocket.Conn{clients, servers} {
			for _, c := range m {
				_ = c.Close()
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ep := range eps {
		g.Go(func() error {
			url := "ws://" + ln.Addr().String() + ep.path()
			conn, _, err := websocket.DefaultDialer.DialContext(gctx, url, nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", url, err)
			}
			mu.Lock()
			clients[ep] = conn
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		drainAccepted(accepted)
		cleanup()
		return nil, err
	}

	for len(servers) < len(eps) {
		select {
		case a := <-accepted:
			servers[a.ep] = a.conn
		case <-ctx.Done():
			cleanup()
			return nil, ctx.Err()
		}
	}
	logger.Debug("Websocket channels connected", "addr", ln.Addr().String())

	f := &Fabric{Kind: WebSocket}
	for _, seat := range protocol.Seats() {
		at := func(kind protocol.Kind, m map[endpoint]*websocket.Conn) *websocket.Conn {
			return m[endpoint{seat: seat, kind: kind}]
		}
		f.Dealer[seat.Index()] = actor.DealerLink{
			Cards:     channel.NewWebSocket(at(protocol.KindCards, servers), protocol.CardCodec),
			Decisions: channel.NewWebSocket(at(protocol.KindDecisions, servers), protocol.DecisionCodec),
			Values:    channel.NewWebSocket(at(protocol.KindValues, servers), protocol.ValueCodec),
		}
		f.Players[seat.Index()] = &actor.PlayerLink{
			Cards:     channel.NewWebSocket(at(protocol.KindCards, clients), protocol.CardCodec),
			Decisions: channel.NewWebSocket(at(protocol.KindDecisions, clients), protocol.DecisionCodec),
			Values:    channel.NewWebSocket(at(protocol.KindValues, clients), protocol.ValueCodec),
		}
	}
	return f, nil
}

// drainAccepted closes server-side connections that were upgraded before setup failed
func drainAccepted(accepted <-chan acceptedConn) {
	for {
		select {
		case a := <-accepted:
			_ = a.conn.Close()
		default:
			return
		}
	}
}
