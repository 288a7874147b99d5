// Package upstream implements the upstream connector (C3): it produces a
// bidirectional byte stream to the origin Redis, plain or TLS, for a proxy
// session to pump bytes across.
package upstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// Connector dials one origin Redis connection per call; there is no
// connection pooling, each proxy session owns its own upstream socket.
type Connector struct {
	Addr      string
	TLS       bool
	ServerName string
	Dialer    net.Dialer
}

// New returns a Connector for addr. If tlsEnabled, Connect performs a TLS
// handshake using the system trust store with SNI derived from addr's
// host.
func New(addr string, tlsEnabled bool) (*Connector, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("upstream: invalid address %q: %w", addr, err)
	}
	return &Connector{Addr: addr, TLS: tlsEnabled, ServerName: host}, nil
}

// Connect dials the origin. On any failure it returns a non-nil error;
// the caller must treat this as terminal for the session rather than
// retrying.
func (c *Connector) Connect(ctx context.Context) (net.Conn, error) {
	conn, err := c.Dialer.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("upstream: dial %q: %w", c.Addr, err)
	}

	if !c.TLS {
		return conn, nil
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: c.ServerName, MinVersion: tls.VersionTLS12})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("upstream: tls handshake with %q: %w", c.Addr, err)
	}
	return tlsConn, nil
}
