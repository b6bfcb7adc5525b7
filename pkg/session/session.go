// Package session implements the framed TCP session a SlimProto client
// speaks with its server: handshake, send, receive and disconnect, all
// built on the codec in pkg/slimproto.
//
// The session owns its socket exclusively and is not safe for
// concurrent use — the caller may run one outstanding Send and one
// outstanding Receive on different goroutines as long as neither races
// the other on the underlying connection, mirroring the teacher's
// single-sender/single-receiver split between a client's TLS receive
// loop and its sender goroutine.
package session

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/squeezelite-go/slimproto/pkg/metrics"
	"github.com/squeezelite-go/slimproto/pkg/slimproto"
)

// State is the session's position in the handshake state machine.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// EndPoint is a server network address. Connect dials TCP on Port; the
// well-known SlimProto port is DefaultPort (3483).
type EndPoint struct {
	IP   net.IP
	Port uint16
}

func (e EndPoint) String() string {
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

// DefaultPort is the well-known SlimProto TCP/UDP port.
const DefaultPort uint16 = 3483

// sentinelMAC substitutes for an all-zero MAC in Helo, matching the teacher's
// habit of providing a safe zero-ish default rather than failing.
var sentinelMAC = [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

// Dialer opens the TCP connection a Session wraps. Production code uses
// net.Dialer; tests substitute an in-memory net.Pipe-backed factory.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Session drives one TCP connection to an LMS-compatible server.
type Session struct {
	dialer Dialer
	logger *log.Logger
	debug  bool
	mx     *metrics.Collectors
	id     xid.ID

	state    State
	endpoint EndPoint
	conn     net.Conn
	reader   *bufio.Reader
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLogger overrides the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDebug turns on verbose per-frame logging, mirroring the teacher's
// Client.Debugf forwarding to Printf.
func WithDebug(debug bool) Option {
	return func(s *Session) { s.debug = debug }
}

// WithMetrics attaches a metrics.Collectors; nil (the default) disables
// metrics entirely.
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Session) { s.mx = m }
}

// WithDialer overrides the TCP dialer, primarily for tests.
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// New returns a Disconnected Session ready to Connect.
func New(opts ...Option) *Session {
	s := &Session{
		dialer: &net.Dialer{},
		logger: log.New(os.Stderr, "slimproto/session: ", log.LstdFlags),
		state:  StateDisconnected,
		id:     xid.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the session's current position in the handshake state
// machine.
func (s *Session) State() State {
	return s.state
}

// EndPoint returns the cached endpoint from the most recent Connect.
func (s *Session) EndPoint() EndPoint {
	return s.endpoint
}

// Connect tears down any existing connection (idempotent), opens a
// fresh TCP socket to endpoint, and sends helo as the first message.
// A Helo whose MAC is the zero value is not rejected — it is sent with
// the sentinel MAC 01:02:03:04:05:06 instead. Helo.MAC is a [6]byte, so
// there is no wrong-length MAC to check at run time. An empty
// rendered capability string is also rejected before any socket is
// opened, per the InvalidArgument cases that must surface before I/O.
func (s *Session) Connect(ctx context.Context, endpoint EndPoint, helo slimproto.Helo) error {
	if helo.Capabilities.Render() == "" {
		return fmt.Errorf("slimproto/session: helo capabilities rendered empty: %w", slimproto.ErrInvalidArgument)
	}

	reconnecting := s.state != StateDisconnected
	s.teardown()
	if reconnecting && s.mx != nil {
		s.mx.Reconnects.Inc()
	}

	if helo.MAC == ([6]byte{}) {
		helo.MAC = sentinelMAC
	}

	s.state = StateHandshaking
	conn, err := s.dialer.DialContext(ctx, "tcp", endpoint.String())
	if err != nil {
		s.state = StateDisconnected
		return fmt.Errorf("slimproto/session: dial %s: %w", endpoint, err)
	}

	s.endpoint = endpoint
	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.state = StateConnected

	if err := s.Send(ctx, helo); err != nil {
		s.teardown()
		return err
	}

	if s.mx != nil {
		s.mx.SessionState.Set(float64(StateConnected))
	}
	s.logf("connected to %s", endpoint)
	return nil
}

// Send encodes msg and writes it to the socket verbatim, flushing
// before returning. Send fails immediately if the session is not
// Connected.
func (s *Session) Send(ctx context.Context, msg slimproto.CS) error {
	if s.state != StateConnected {
		return slimproto.ErrNotConnected
	}

	buf, err := slimproto.Encode(msg)
	if err != nil {
		return err
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(dl)
	} else {
		_ = s.conn.SetWriteDeadline(time.Time{})
	}

	n, err := s.conn.Write(buf)
	if err != nil {
		return fmt.Errorf("slimproto/session: write: %w", slimproto.ErrIoFailure)
	}
	if n != len(buf) {
		return fmt.Errorf("slimproto/session: short write (%d of %d): %w", n, len(buf), slimproto.ErrIoFailure)
	}

	if s.mx != nil {
		s.mx.FramesSent.WithLabelValues(wireOpcode(msg)).Inc()
	}
	if s.debug {
		s.logf("-> %T (%d bytes)", msg, len(buf))
	}
	return nil
}

// Receive reads one length-prefixed frame (a 2-byte big-endian length
// followed by that many payload bytes) and decodes it. Receive fails
// immediately if the session is not Connected. A zero-length frame
// decodes to Unknown; a read returning 0 bytes mid-frame surfaces as
// ErrSocketClosed so the caller knows the stream ended, not merely that
// a frame was short.
func (s *Session) Receive(ctx context.Context) (slimproto.SC, error) {
	if s.state != StateConnected {
		return nil, slimproto.ErrNotConnected
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(dl)
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(s.reader, lenBuf[:]); err != nil {
		return nil, classifyReadErr(err)
	}
	frameLen := binary.BigEndian.Uint16(lenBuf[:])

	if int(frameLen) > slimproto.MaxFrameSize {
		return nil, fmt.Errorf("slimproto/session: frame of %d bytes exceeds max %d: %w", frameLen, slimproto.MaxFrameSize, slimproto.ErrMalformed)
	}

	payload := make([]byte, frameLen)
	if frameLen > 0 {
		if _, err := io.ReadFull(s.reader, payload); err != nil {
			return nil, classifyReadErr(err)
		}
	}

	// A frame shorter than 4 bytes has no opcode to dispatch on at all;
	// Decode requires at least 4 bytes, so represent it directly as
	// Unknown (including the valid, empty, zero-length frame) without
	// invoking Decode.
	var msg slimproto.SC
	var err error
	if len(payload) < 4 {
		msg = slimproto.Unknown{Opcode: "", Raw: payload}
	} else {
		msg, err = slimproto.Decode(payload)
		if err != nil {
			return nil, err
		}
	}

	if s.mx != nil {
		s.mx.FramesReceived.WithLabelValues(scOpcodeLabel(msg)).Inc()
	}
	if s.debug {
		s.logf("<- %T (%d bytes)", msg, frameLen)
	}
	return msg, nil
}

// Disconnect best-effort sends a Bye (errors ignored) then tears down
// the connection. The session returns to Disconnected and may Connect
// again.
func (s *Session) Disconnect(ctx context.Context, reason uint8) {
	if s.state == StateConnected {
		_ = s.Send(ctx, slimproto.Bye{Reason: reason})
	}
	s.logf("disconnecting (reason=%d)", reason)
	s.teardown()
}

func (s *Session) teardown() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.reader = nil
	s.state = StateDisconnected
	if s.mx != nil {
		s.mx.SessionState.Set(float64(StateDisconnected))
	}
}

func (s *Session) logf(format string, v ...interface{}) {
	s.logger.Printf("[%s] "+format, append([]interface{}{s.id.String()}, v...)...)
}

func classifyReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return slimproto.ErrSocketClosed
	}
	return fmt.Errorf("slimproto/session: read: %w: %v", slimproto.ErrIoFailure, err)
}

func wireOpcode(msg slimproto.CS) string {
	switch msg.(type) {
	case slimproto.Helo:
		return "HELO"
	case slimproto.Stat:
		return "STAT"
	case slimproto.Bye:
		return "BYE!"
	case slimproto.SetName:
		return "SETD"
	default:
		return "????"
	}
}

func scOpcodeLabel(msg slimproto.SC) string {
	switch m := msg.(type) {
	case slimproto.Unknown:
		if m.Opcode == "" {
			return "empty"
		}
		return m.Opcode
	default:
		return fmt.Sprintf("%T", msg)
	}
}
