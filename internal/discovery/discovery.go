// Package discovery is the thin LAN peer-announcement collaborator §6
// names at the interface only: it advertises this host under the
// "_inputshare._tcp" service name and resolves a peer's address by querying
// that service name, producing the {endpoint, name} records the session
// controller consumes to fill in --host when the CLI caller omits it.
//
// pion/mdns/v2 (the teacher's indirect dependency via pion/webrtc's ICE
// mDNS candidate resolution) implements the single-name query/respond half
// of mDNS, not full DNS-SD service browsing (no PTR/SRV/TXT enumeration of
// unknown instances). Rather than hand-roll a DNS-SD responder, this
// package uses that primitive directly: every peer answers mDNS queries
// for the literal name "_inputshare._tcp.local", so a bare browse resolves
// to whichever peer answers first. Multi-peer enumeration is out of scope
// per §1's two-peer-only non-goal anyway.
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pion/mdns/v2"
	"github.com/pion/transport/v3/ipv4"
	"github.com/pion/transport/v3/ipv6"

	"github.com/edenriquez/inputshare/internal/logging"
)

var log = logging.L("discovery")

// ServiceName is the rendezvous name every peer answers mDNS queries for.
const ServiceName = "_inputshare._tcp.local"

// Record is what the session controller consumes: a dialable endpoint and
// a name for the peer, which is its answering address (no friendly name
// travels over mDNS).
type Record struct {
	Endpoint string
	Name     string
}

// Advertiser answers mDNS queries for ServiceName with this host's address.
// The friendly name itself does not travel over mDNS (pion/mdns answers
// with an address record, not a TXT record) and is only logged locally;
// envelopes carry the separate device ID in sourceDeviceId.
type Advertiser struct {
	conn *mdns.Conn
	name string
}

// Advertise starts answering mDNS queries for ServiceName. name is this
// host's friendly display name, logged locally for operator visibility;
// it is not part of the mDNS answer itself.
func Advertise(name string) (*Advertiser, error) {
	conn, err := newConn([]string{ServiceName})
	if err != nil {
		return nil, fmt.Errorf("discovery: start mdns responder: %w", err)
	}
	log.Info("advertising on LAN", "service", ServiceName, "name", name)
	return &Advertiser{conn: conn, name: name}, nil
}

// Close stops answering queries.
func (a *Advertiser) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// Browse queries the LAN once for ServiceName and returns the first peer
// that answers, paired with port to form a dialable endpoint. It returns
// an error if no peer answers within timeout.
func Browse(ctx context.Context, port int, timeout time.Duration) (Record, error) {
	conn, err := newConn(nil)
	if err != nil {
		return Record{}, fmt.Errorf("discovery: start mdns query conn: %w", err)
	}
	defer conn.Close()

	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, addr, err := conn.Query(qctx, ServiceName)
	if err != nil {
		return Record{}, fmt.Errorf("discovery: no peer answered %s: %w", ServiceName, err)
	}

	endpoint := net.JoinHostPort(addr.String(), fmt.Sprintf("%d", port))
	log.Info("discovered peer", "endpoint", endpoint)
	return Record{Endpoint: endpoint, Name: addr.String()}, nil
}

// newConn builds a pion/mdns connection bound to the standard mDNS
// multicast group on both IPv4 and IPv6, answering for localNames (nil to
// build a query-only connection).
func newConn(localNames []string) (*mdns.Conn, error) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		return nil, err
	}
	sock4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		return nil, err
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	var pconn6 *ipv6.PacketConn
	if err == nil {
		if sock6, err6 := net.ListenUDP("udp6", addr6); err6 == nil {
			pconn6 = ipv6.NewPacketConn(sock6)
		}
	}

	return mdns.Server(ipv4.NewPacketConn(sock4), pconn6, &mdns.Config{
		LocalNames: localNames,
	})
}
