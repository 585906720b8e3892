// Package transport implements C2: a framed, mutually-authenticated TCP
// connection carrying wire.Envelope messages. There is no reconnect or
// backoff. The bounded-send-channel and read/write pump shape is adapted from the
// teacher's WebSocket client (internal/websocket/client.go); the transport
// itself is raw TLS over TCP per §6, not WebSocket.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/wire"
)

var log = logging.L("transport")

const (
	dialTimeout    = 10 * time.Second
	sendQueueDepth = 256
	readChunkSize  = 64 * 1024
)

// ErrClosed is returned by Conn methods after Close has been called.
var ErrClosed = errors.New("transport: connection closed")

// Callbacks are invoked as a Conn's read pump and writer observe events.
// Callers (the session controller) are expected to post these onto their
// own serial queue rather than act on them inline, per §5.
type Callbacks struct {
	OnEnvelope     func(*wire.Envelope)
	OnDisconnected func(error)
}

// Conn is one established, framed connection.
type Conn struct {
	raw net.Conn
	cb  Callbacks

	sendChan  chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(raw net.Conn, cb Callbacks) *Conn {
	c := &Conn{
		raw:      raw,
		cb:       cb,
		sendChan: make(chan []byte, sendQueueDepth),
		closed:   make(chan struct{}),
	}
	go c.writePump()
	go c.readPump()
	return c
}

// SendEnvelope reliably enqueues env; it blocks only until there is room or
// the connection closes. Handshake and non-move input events MUST use this
// (§5: "other message kinds MUST NOT be dropped").
func (c *Conn) SendEnvelope(env *wire.Envelope) error {
	data, err := wire.EncodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("transport: encode envelope: %w", err)
	}
	frame := wire.Frame(data)
	select {
	case c.sendChan <- frame:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

// SendEnvelopeDroppable enqueues env, dropping the oldest still-pending
// frame to make room if the send queue is full, rather than blocking.
// Reserved for coalesced mouseMove envelopes, which are idempotent under
// delta accumulation (§5).
func (c *Conn) SendEnvelopeDroppable(env *wire.Envelope) error {
	data, err := wire.EncodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("transport: encode envelope: %w", err)
	}
	frame := wire.Frame(data)

	select {
	case c.sendChan <- frame:
		return nil
	case <-c.closed:
		return ErrClosed
	default:
	}

	select {
	case <-c.sendChan:
		log.Debug("dropped oldest pending move frame, send queue full")
	default:
	}

	select {
	case c.sendChan <- frame:
		return nil
	case <-c.closed:
		return ErrClosed
	default:
		return nil
	}
}

// Close tears the connection down and stops its pumps.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.raw.Close()
	})
	return err
}

func (c *Conn) writePump() {
	for {
		select {
		case frame := <-c.sendChan:
			if _, err := c.raw.Write(frame); err != nil {
				c.fail(fmt.Errorf("transport: write: %w", err))
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *Conn) readPump() {
	deframer := wire.NewDeframer()
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.raw.Read(buf)
		if n > 0 {
			deframer.Push(buf[:n])
			frames, derr := deframer.Next()
			if derr != nil {
				c.fail(fmt.Errorf("transport: %w", derr))
				return
			}
			for _, f := range frames {
				env, derr := wire.DecodeEnvelope(f)
				if derr != nil {
					log.Warn("dropping malformed frame", "error", derr)
					continue
				}
				if c.cb.OnEnvelope != nil {
					c.cb.OnEnvelope(env)
				}
			}
		}
		if err != nil {
			c.fail(fmt.Errorf("transport: read: %w", err))
			return
		}
	}
}

func (c *Conn) fail(err error) {
	select {
	case <-c.closed:
		return
	default:
	}
	c.Close()
	if c.cb.OnDisconnected != nil {
		c.cb.OnDisconnected(err)
	}
}

// Dialer establishes the sender-side outbound connection.
type Dialer struct {
	TLSConfig *tls.Config
}

// NewDialer creates a Dialer using cfg for the handshake.
func NewDialer(cfg *tls.Config) *Dialer {
	return &Dialer{TLSConfig: cfg}
}

// Dial connects to addr and completes the TLS handshake before returning.
func (d *Dialer) Dial(ctx context.Context, addr string, cb Callbacks) (*Conn, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	raw, err := tls.DialWithDialer(dialer, "tcp", addr, d.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	log.Info("connected", "addr", addr)
	return newConn(raw, cb), nil
}

// Listener accepts the receiver-side inbound connection.
type Listener struct {
	ln net.Listener
}

// Listen opens a TLS listener on addr (host:port, or :port).
func Listen(addr string, cfg *tls.Config) (*Listener, error) {
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept blocks for the next inbound connection and completes its TLS
// handshake before returning.
func (l *Listener) Accept(cb Callbacks) (*Conn, error) {
	raw, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	tlsConn, ok := raw.(*tls.Conn)
	if ok {
		if err := tlsConn.Handshake(); err != nil {
			raw.Close()
			return nil, fmt.Errorf("transport: handshake: %w", err)
		}
	}
	log.Info("accepted connection", "remote", raw.RemoteAddr())
	return newConn(raw, cb), nil
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
