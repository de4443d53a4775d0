// Package ldap implements a synchronous LDAP v2/v3 client: bind, search
// (with paging), compare, add, modify, rename, delete, and extended
// operations, plus a handful of Active Directory administrative helpers
// (computer account creation, root DN and well-known container discovery).
//
// The client is single-threaded and holds at most one outstanding request
// per connection: every call writes its request and blocks for the
// matching response before returning. Callers who need concurrency use
// multiple Client instances.
package ldap

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"adldap/ber"
	"adldap/control"
	"adldap/ldaputil"
	"adldap/transport"
)

// Client owns one LDAP connection: the transport, the monotonically
// increasing message id (seq), the bound/unbound flag, and the fields
// populated by the most recently completed operation.
type Client struct {
	conn   *transport.Conn
	config Config

	seq   int64
	bound bool
	debug debugging

	rootDn string

	// Last-result state, refreshed by every operation.
	ResultCode    uint16
	ResultString  string
	ResponseCode  ldaputil.Application
	ResponseDN    string
	Referrals     []string
	FullResult    []byte
	ExtName       string
	ExtValue      []byte
}

// New creates a Client from opts without connecting.
func New(opts ...Option) *Client {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{config: cfg}
}

// Connect dials the configured host and port, over TLS if configured.
func (cl *Client) Connect() error {
	addr := net.JoinHostPort(cl.config.TargetHost, cl.config.TargetPort)
	dialOpts := []transport.DialOpt{
		transport.WithDialer(&net.Dialer{Timeout: time.Duration(cl.config.TimeoutMs) * time.Millisecond}),
	}
	var (
		conn *transport.Conn
		err  error
	)
	if cl.config.UseTLS {
		dialOpts = append(dialOpts, transport.WithTLSConfig(cl.config.TLSConfig))
		conn, err = transport.DialTLS(addr, dialOpts...)
	} else {
		conn, err = transport.Dial(addr, dialOpts...)
	}
	if err != nil {
		return NewError(ErrorNetwork, err)
	}
	cl.conn = conn
	cl.seq = 0
	cl.bound = false
	return nil
}

// Connected reports whether the client is bound. andBound is accepted for
// interface compatibility but ignored: this always checks the bound flag
// regardless of the value passed in, matching the original client's
// documented behavior.
func (cl *Client) Connected(andBound bool) bool {
	return cl.bound
}

// Bound reports whether the last Bind (or BindSaslDigestMd5/BindNTLM)
// succeeded and no subsequent Logout or transport reset has occurred.
func (cl *Client) Bound() bool {
	return cl.bound
}

// RootDN returns the root naming context discovered by a prior call to
// DiscoverRootDN, or "" if it has not been discovered yet.
func (cl *Client) RootDN() string {
	return cl.rootDn
}

// Close closes the underlying connection and resets seq and bound.
func (cl *Client) Close() error {
	if cl.conn == nil {
		return nil
	}
	err := cl.conn.Close()
	cl.conn = nil
	cl.seq = 0
	cl.bound = false
	return err
}

// StartTLS sends the StartTLS extended operation and, on success, upgrades
// the connection in place.
func (cl *Client) StartTLS(config *tls.Config) error {
	if cl.conn == nil {
		return NewError(ErrorNetwork, fmt.Errorf("ldap: not connected"))
	}
	if cl.conn.IsTLS() {
		return NewError(ErrorNetwork, fmt.Errorf("ldap: already encrypted"))
	}
	req := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationExtendedRequest.Tag(), nil, "Start TLS")
	req.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, "1.3.6.1.4.1.1466.20037", "TLS Extended Command"))
	resp, err := cl.do(req)
	if err != nil {
		return err
	}
	if err := cl.decodeResult(resp); err != nil {
		return err
	}
	if err := cl.conn.StartTLS(config); err != nil {
		cl.Close()
		return NewError(ErrorNetwork, err)
	}
	return nil
}

// nextSeq returns the next message id, incrementing before use.
func (cl *Client) nextSeq() int64 {
	cl.seq++
	return cl.seq
}

// do writes op wrapped in the SEQUENCE{INTEGER seq, op} envelope and reads
// back exactly one framed response, verifying the response's leading
// INTEGER matches the request's seq.
func (cl *Client) do(op *ber.Packet) (*ber.Packet, error) {
	if cl.conn == nil {
		return nil, NewError(ErrorNetwork, fmt.Errorf("ldap: not connected"))
	}
	seq := cl.nextSeq()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	envelope.AppendChild(op)
	cl.debug.PrintPacket(envelope)
	if err := cl.conn.WriteAll(envelope.Bytes()); err != nil {
		cl.Close()
		return nil, NewError(ErrorNetwork, err)
	}
	resp, err := cl.receive()
	if err != nil {
		cl.Close()
		return nil, NewError(ErrorNetwork, err)
	}
	cl.debug.PrintPacket(resp)
	cl.FullResult = resp.Bytes()
	if len(resp.Children) == 0 {
		return nil, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: empty response envelope"))
	}
	gotSeq, ok := resp.Children[0].Value.(int64)
	if !ok || gotSeq != seq {
		return nil, NewError(ErrorUnexpectedMessageID, fmt.Errorf("ldap: response id %v does not match request id %d", resp.Children[0].Value, seq))
	}
	if len(resp.Children) < 2 {
		return nil, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: response envelope missing operation"))
	}
	return resp, nil
}

// receive reads one framed BER message: a tag byte that must be the
// universal SEQUENCE tag, a length (short or long form), and exactly that
// many bytes of content.
func (cl *Client) receive() (*ber.Packet, error) {
	tag, err := cl.conn.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("ldap: reading response tag: %w", err)
	}
	if tag != byte(ber.ClassUniversal)|byte(ber.TypeConstructed)|byte(ber.TagSequence) {
		return nil, fmt.Errorf("ldap: expected SEQUENCE tag 0x30, got 0x%02x", tag)
	}
	lengthByte, err := cl.conn.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("ldap: reading response length: %w", err)
	}
	var contentLen int
	if lengthByte&0x80 == 0 {
		contentLen = int(lengthByte)
	} else {
		n := int(lengthByte &^ 0x80)
		if n == 0 || n > 4 {
			return nil, fmt.Errorf("ldap: unsupported long-form length of %d bytes", n)
		}
		lenBytes, err := cl.conn.ReadExact(n)
		if err != nil {
			return nil, fmt.Errorf("ldap: reading long-form length: %w", err)
		}
		for _, b := range lenBytes {
			contentLen = (contentLen << 8) | int(b)
		}
	}
	content, err := cl.conn.ReadExact(contentLen)
	if err != nil {
		return nil, fmt.Errorf("ldap: reading response content: %w", err)
	}
	full := make([]byte, 0, 2+contentLen)
	full = append(full, tag, lengthByte)
	if lengthByte&0x80 != 0 {
		full = append(full, encodeLongLength(contentLen, int(lengthByte&^0x80))...)
	}
	full = append(full, content...)
	p, err := ber.ParseBytes(full)
	if err != nil {
		return nil, fmt.Errorf("ldap: decoding response: %w", err)
	}
	return p, nil
}

func encodeLongLength(n, numBytes int) []byte {
	buf := make([]byte, numBytes)
	for i := numBytes - 1; i >= 0; i-- {
		buf[i] = byte(n & 0xff)
		n >>= 8
	}
	return buf
}

// decodeResult extracts resultCode/matchedDN/diagnosticMessage from resp's
// operation TLV (resp.Children[1]) for the response shapes that carry them,
// updates the client's last-result fields, and returns nil iff
// resultCode == 0.
func (cl *Client) decodeResult(resp *ber.Packet) error {
	op := resp.Children[1]
	cl.ResponseCode = ldaputil.Application(op.Tag)
	if len(op.Children) < 3 {
		cl.ResultCode = ldaputil.ResultSuccess
		cl.ResultString = ""
		return nil
	}
	resultCode := uint16(op.Children[0].Value.(int64))
	matchedDN, _ := op.Children[1].Value.(string)
	diagnostic, _ := op.Children[2].Value.(string)
	cl.ResultCode = resultCode
	cl.ResultString = diagnostic
	cl.ResponseDN = matchedDN
	cl.Referrals = nil
	if resultCode == ldaputil.ResultReferral && len(op.Children) > 3 && op.Children[3].Tag == 3 {
		for _, child := range op.Children[3].Children {
			if s, ok := child.Value.(string); ok {
				cl.Referrals = append(cl.Referrals, s)
			}
		}
	}
	return getLDAPError(resultCode, matchedDN, diagnostic, resp)
}

// decodeControls decodes a [Controls] envelope, if present as resp's third
// top-level child, into control.Control values.
func decodeControls(resp *ber.Packet) ([]control.Control, error) {
	if len(resp.Children) < 3 {
		return nil, nil
	}
	var out []control.Control
	for _, child := range resp.Children[2].Children {
		c, err := control.Decode(child)
		if err != nil {
			return nil, fmt.Errorf("ldap: decoding control: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}
