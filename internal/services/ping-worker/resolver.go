package ping_worker

import (
	"context"
	"errors"
	"net"
	"net/netip"
)

// Resolver decides which address a connection to host is actually made to.
type Resolver interface {
	Resolve(ctx context.Context, host string) (netip.Addr, error)
}

// Pinned resolves every host to the same IP.
type Pinned struct {
	IP netip.Addr
}

func Pin(ip netip.Addr) Pinned { return Pinned{IP: ip} }

var ErrNoPinnedIP = errors.New("no pinned ip")

func (p Pinned) Resolve(_ context.Context, _ string) (netip.Addr, error) {
	if !p.IP.IsValid() {
		return netip.Addr{}, ErrNoPinnedIP
	}
	return p.IP.Unmap(), nil
}

// DialContext swaps the host part of the dial address for whatever r returns
// and keeps the port. TLS and the Host header are set up by the transport
// from the request URL, so they still see the original hostname.
func DialContext(r Resolver, d *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ip, err := r.Resolve(ctx, host)
		if err != nil {
			return nil, &net.OpError{Op: "dial", Net: network, Err: err}
		}
		return d.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
	}
}
