// Package transport wraps a TCP or TLS connection to an LDAP server behind
// a small connect/read-exact/write-all/close surface, so the client state
// machine above it never touches net.Conn directly.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"
)

// DefaultTimeout is used by Dial and DialTLS when no timeout is given.
var DefaultTimeout = 60 * time.Second

// Conn is a single connection to an LDAP server.
type Conn struct {
	conn  net.Conn
	isTLS bool
}

// DialOpt configures a dial operation.
type DialOpt func(*dialOpts)

type dialOpts struct {
	dialer    *net.Dialer
	tlsConfig *tls.Config
}

// WithDialer overrides the net.Dialer used to establish the connection.
func WithDialer(d *net.Dialer) DialOpt {
	return func(o *dialOpts) { o.dialer = d }
}

// WithTLSConfig supplies the tls.Config used for ldaps:// and StartTLS.
func WithTLSConfig(tc *tls.Config) DialOpt {
	return func(o *dialOpts) { o.tlsConfig = tc }
}

// Dial connects over plain TCP to addr ("host:port").
func Dial(addr string, opts ...DialOpt) (*Conn, error) {
	o := resolve(opts)
	c, err := o.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &Conn{conn: c}, nil
}

// DialTLS connects over TLS to addr ("host:port").
func DialTLS(addr string, opts ...DialOpt) (*Conn, error) {
	o := resolve(opts)
	c, err := tls.DialWithDialer(o.dialer, "tcp", addr, o.tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("transport: dial tls %s: %w", addr, err)
	}
	return &Conn{conn: c, isTLS: true}, nil
}

// DialURL connects to a ldap://, ldaps://, or ldapi:// URL, defaulting the
// port to 389 or 636 when unspecified.
func DialURL(addr string, opts ...DialOpt) (*Conn, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("transport: parse url %q: %w", addr, err)
	}
	o := resolve(opts)
	if u.Scheme == "ldapi" {
		path := u.Path
		if path == "" || path == "/" {
			path = "/var/run/slapd/ldapi"
		}
		c, err := o.dialer.Dial("unix", path)
		if err != nil {
			return nil, fmt.Errorf("transport: dial unix %s: %w", path, err)
		}
		return &Conn{conn: c}, nil
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		host, port = u.Host, ""
	}
	switch u.Scheme {
	case "ldap":
		if port == "" {
			port = "389"
		}
		c, err := o.dialer.Dial("tcp", net.JoinHostPort(host, port))
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", u.Host, err)
		}
		return &Conn{conn: c}, nil
	case "ldaps":
		if port == "" {
			port = "636"
		}
		c, err := tls.DialWithDialer(o.dialer, "tcp", net.JoinHostPort(host, port), o.tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("transport: dial tls %s: %w", u.Host, err)
		}
		return &Conn{conn: c, isTLS: true}, nil
	default:
		return nil, fmt.Errorf("transport: unknown scheme %q", u.Scheme)
	}
}

func resolve(opts []DialOpt) dialOpts {
	o := dialOpts{dialer: &net.Dialer{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = &net.Dialer{Timeout: DefaultTimeout}
	}
	return o
}

// WriteAll writes the full contents of b, returning an error if the
// connection closes or errors before every byte is written.
func (c *Conn) WriteAll(b []byte) error {
	n, err := c.conn.Write(b)
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	if n != len(b) {
		return fmt.Errorf("transport: short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

// ReadExact reads exactly n bytes, blocking until they arrive or the
// connection fails.
func (c *Conn) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := c.conn.Read(buf[read:])
		if err != nil {
			return nil, fmt.Errorf("transport: read: %w", err)
		}
		read += m
	}
	return buf, nil
}

// ReadByte reads a single byte.
func (c *Conn) ReadByte() (byte, error) {
	b, err := c.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SetDeadline sets the read/write deadline for the underlying connection.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// StartTLS upgrades the connection in place, as used after an LDAP
// StartTLS extended operation succeeds. It must only be called once, on a
// connection that is not already TLS.
func (c *Conn) StartTLS(config *tls.Config) error {
	if c.isTLS {
		return fmt.Errorf("transport: connection is already TLS")
	}
	tc := tls.Client(c.conn, config)
	if err := tc.Handshake(); err != nil {
		return fmt.Errorf("transport: StartTLS handshake: %w", err)
	}
	c.conn = tc
	c.isTLS = true
	return nil
}

// IsTLS reports whether the connection is TLS-protected.
func (c *Conn) IsTLS() bool {
	return c.isTLS
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
