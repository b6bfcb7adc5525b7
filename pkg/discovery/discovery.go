// Package discovery implements the UDP broadcast exchange a SlimProto
// client uses to locate a server on its local network, plus a TLV
// parser for the server's response and an optional SQLite-backed cache
// of the last server seen.
package discovery

import (
	"context"
	"log"
	"net"
	"os"
	"time"

	"github.com/squeezelite-go/slimproto/pkg/metrics"
	"github.com/squeezelite-go/slimproto/pkg/session"
)

// Port is the UDP (and TCP) port SlimProto discovery and control both
// use.
const Port = session.DefaultPort

// BroadcastInterval is how often a probe is (re)sent while waiting for
// a response.
const BroadcastInterval = 5 * time.Second

// probePayload is the literal discovery request body.
var probePayload = []byte("eNAME\x00IPAD\x00JSON\x00VERS")

// Server is one discovery result: the endpoint a session should dial,
// plus the raw TLV records the server advertised.
type Server struct {
	EndPoint session.EndPoint
	TLV      map[string]TlvValue
}

// PacketConn is the subset of net.PacketConn discovery depends on, so
// tests can substitute an in-memory implementation.
type PacketConn interface {
	WriteTo(b []byte, addr net.Addr) (int, error)
	ReadFrom(b []byte) (int, net.Addr, error)
	SetDeadline(t time.Time) error
	Close() error
}

// Discoverer sends periodic broadcasts and waits for the first valid
// reply.
type Discoverer struct {
	logger  *log.Logger
	mx      *metrics.Collectors
	newConn func() (PacketConn, error)
}

// Option configures a Discoverer at construction time.
type Option func(*Discoverer)

// WithLogger overrides the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Discoverer) { d.logger = l }
}

// WithMetrics attaches a metrics.Collectors; nil (the default) disables
// metrics.
func WithMetrics(m *metrics.Collectors) Option {
	return func(d *Discoverer) { d.mx = m }
}

// withConnFactory overrides how the UDP socket is opened, for tests.
func withConnFactory(f func() (PacketConn, error)) Option {
	return func(d *Discoverer) { d.newConn = f }
}

// New returns a Discoverer. It opens no socket itself: each Discover
// call opens its own ephemeral local UDP socket with broadcast enabled.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		logger:  log.New(os.Stderr, "slimproto/discovery: ", log.LstdFlags),
		newConn: defaultConn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultConn() (PacketConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, err
	}
	if err := enableBroadcast(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Discover sends the discovery probe every BroadcastInterval and
// returns the first server whose response starts with ASCII 'E'. It
// keeps retrying until ctx is done (cancellation or deadline), at which
// point it returns (nil, nil): per the protocol's contract, a discovery
// timeout or cancellation is not an error, it is simply "nothing
// found".
func (d *Discoverer) Discover(ctx context.Context) (*Server, error) {
	conn, err := d.newConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := time.Now()
	broadcastAddr := &net.UDPAddr{IP: net.IPv4bcast, Port: int(Port)}

	go d.broadcastLoop(ctx, conn, broadcastAddr)

	buf := make([]byte, 1500)
	for {
		select {
		case <-ctx.Done():
			return nil, nil
		default:
		}

		_ = conn.SetDeadline(time.Now().Add(250 * time.Millisecond))
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil
			}
			continue // deadline or transient read error: keep polling
		}
		if n < 1 || buf[0] != 'E' {
			continue
		}

		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}

		srv := &Server{
			EndPoint: session.EndPoint{IP: udpAddr.IP, Port: Port},
			TLV:      parseTLV(buf[1:n]),
		}
		if d.mx != nil {
			d.mx.DiscoveryLookup.Observe(time.Since(start).Seconds())
		}
		d.logger.Printf("discovered server at %s", srv.EndPoint)
		return srv, nil
	}
}

func (d *Discoverer) broadcastLoop(ctx context.Context, conn PacketConn, addr *net.UDPAddr) {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	// Fire immediately, then on each tick, until the context is done.
	for {
		if _, err := conn.WriteTo(probePayload, addr); err != nil {
			d.logger.Printf("broadcast failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
