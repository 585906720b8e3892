package main

import (
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edenriquez/inputshare/internal/mtls"
	"github.com/edenriquez/inputshare/internal/transport"
	"github.com/edenriquez/inputshare/internal/wire"
)

var mockReceiveFlags struct {
	port int
}

// mockReceiveCmd is the development-only peer stub §6 names: it accepts any
// TLS client (mtls.DevServerConfig, no fingerprint pin), prints every
// inputEvent it receives instead of injecting it, and acks activate/
// deactivate so a real `send` peer's state machine completes its handoff
// instead of timing out.
var mockReceiveCmd = &cobra.Command{
	Use:   "mock-receive",
	Short: "Development-only peer stub: accepts any sender and prints received input events",
	RunE:  runMockReceive,
}

func init() {
	mockReceiveCmd.Flags().IntVar(&mockReceiveFlags.port, "port", 4242, "port to listen on")
}

func runMockReceive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tlsConfig, err := mtls.DevServerConfig()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", mockReceiveFlags.port)
	ln, err := transport.Listen(addr, tlsConfig)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	fmt.Printf("mock-receive listening on %s (accepts any peer, no certificate pin; certificate sha256 %s)\n",
		addr, mtls.Fingerprint(tlsConfig.Certificates[0].Certificate[0]))

	for {
		session := &mockSession{}
		conn, err := ln.Accept(transport.Callbacks{
			OnEnvelope: func(env *wire.Envelope) { session.handle(env) },
		})
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				fmt.Println("accept failed:", err)
				continue
			}
		}
		session.conn = conn
	}
}

// mockSession acks activate/deactivate and prints every inputEvent for one
// accepted connection. Its conn field is set right after Accept returns, so
// the very first envelopes on a connection (rare, since TLS handshake
// happens inside Accept) would otherwise race; in practice the peer never
// sends before receiving our hello-less accept, so this ordering is safe.
type mockSession struct {
	conn *transport.Conn
	seq  atomic.Uint64
}

func (s *mockSession) handle(env *wire.Envelope) {
	switch env.MessageType {
	case wire.MessageInputEvent:
		printInputEvent(env)
	case wire.MessageActivate:
		fmt.Println("activate received, acking")
		s.reply(wire.MessageActivated, nil)
	case wire.MessageDeactivate:
		fmt.Println("deactivate received, acking")
		s.reply(wire.MessageDeactivated, nil)
	default:
		fmt.Printf("%s received\n", env.MessageType)
	}
}

func (s *mockSession) reply(kind wire.MessageType, payload any) {
	if s.conn == nil {
		return
	}
	var raw []byte
	if payload != nil {
		encoded, err := wire.EncodePayload(payload)
		if err != nil {
			fmt.Println("encode reply payload:", err)
			return
		}
		raw = encoded
	}
	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     kind,
		SequenceNumber:  s.seq.Add(1),
		SourceDeviceID:  "mock-receive",
		Payload:         raw,
	}
	if err := s.conn.SendEnvelope(env); err != nil {
		fmt.Println("reply failed:", err)
	}
}
