package ldap

import (
	"net"
	"testing"
	"time"

	"adldap/ber"
	"adldap/ldaputil"
)

// fakeServer is a minimal single-connection LDAP listener used to drive the
// Client state machine end to end without a real directory server. handler
// is invoked once per request with the decoded envelope and the net.Conn to
// write a response on; it returns false to stop serving.
type fakeServer struct {
	ln net.Listener
}

func newFakeServer(t *testing.T, handler func(conn net.Conn, envelope *ber.Packet) bool) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	fs := &fakeServer{ln: ln}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, envelope, err := ber.Parse(conn, 0)
			if err != nil {
				return
			}
			if !handler(conn, envelope) {
				return
			}
		}
	}()
	return fs
}

func (fs *fakeServer) addr() string {
	return fs.ln.Addr().String()
}

func (fs *fakeServer) Close() {
	fs.ln.Close()
}

func writeResult(t *testing.T, conn net.Conn, seq int64, appTag ldaputil.Application, resultCode uint16) {
	t.Helper()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	op := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, appTag.Tag(), nil, "Response")
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(resultCode), "resultCode"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "matchedDN"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "diagnosticMessage"))
	envelope.AppendChild(op)
	if _, err := conn.Write(envelope.Bytes()); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

func dialClient(t *testing.T, addr string) *Client {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	cl := New(WithHost(host, port), WithTimeout(2000))
	if err := cl.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return cl
}

func TestBindSuccess(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		writeResult(t, conn, seq, ldaputil.ApplicationBindResponse, ldaputil.ResultSuccess)
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	if err := cl.Bind("cn=admin,dc=example,dc=com", "secret"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !cl.Bound() {
		t.Fatalf("expected Bound() true after successful bind")
	}
	if !cl.Connected(true) {
		t.Fatalf("expected Connected(true) true after successful bind")
	}
}

func TestBindFailureClearsBound(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		writeResult(t, conn, seq, ldaputil.ApplicationBindResponse, ldaputil.ResultInvalidCredentials)
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	if err := cl.Bind("cn=admin,dc=example,dc=com", "wrong"); err == nil {
		t.Fatalf("expected bind error")
	}
	if cl.Bound() {
		t.Fatalf("expected Bound() false after failed bind")
	}
}

func TestMessageIDMismatchFails(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		writeResult(t, conn, seq+1, ldaputil.ApplicationBindResponse, ldaputil.ResultSuccess)
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	err := cl.Bind("cn=admin,dc=example,dc=com", "secret")
	if err == nil {
		t.Fatalf("expected error on mismatched message id")
	}
	if !IsErrorWithCode(err, ErrorUnexpectedMessageID) {
		t.Fatalf("expected ErrorUnexpectedMessageID, got %v", err)
	}
}

func TestCompareOnlyTrueOnSuccess(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		writeResult(t, conn, seq, ldaputil.ApplicationCompareResponse, ldaputil.ResultCompareTrue)
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	ok, err := cl.Compare("cn=user1,dc=example,dc=com", "mail", "user1@example.com")
	if ok {
		t.Fatalf("expected Compare to report false for resultCode compareTrue(6), preserving the documented discrepancy")
	}
	if err == nil {
		t.Fatalf("expected non-nil error for non-zero result code")
	}
}

func TestExtendedDecodesResponseNameAndValue(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		respEnvelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
		respEnvelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
		op := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationExtendedResponse.Tag(), nil, "Extended Response")
		op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(ldaputil.ResultSuccess), "resultCode"))
		op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "matchedDN"))
		op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "diagnosticMessage"))
		op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 10, "1.3.6.1.4.1.1466.20037", "responseName"))
		op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 11, "some-response-value", "response"))
		respEnvelope.AppendChild(op)
		if _, err := conn.Write(respEnvelope.Bytes()); err != nil {
			t.Fatalf("write extended response: %v", err)
		}
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	name, value, err := cl.Extended("1.3.6.1.4.1.1466.20037", nil)
	if err != nil {
		t.Fatalf("extended: %v", err)
	}
	if name != "1.3.6.1.4.1.1466.20037" {
		t.Fatalf("expected responseName to round-trip, got %q", name)
	}
	if string(value) != "some-response-value" {
		t.Fatalf("expected response value to round-trip, got %q", string(value))
	}
}

func TestDeleteDirectOctetString(t *testing.T) {
	done := make(chan struct{})
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		op := envelope.Children[1]
		if ldaputil.Application(op.Tag) != ldaputil.ApplicationDelRequest {
			t.Errorf("expected DelRequest tag, got %v", op.Tag)
		}
		if op.Type != ber.TypePrimitive {
			t.Errorf("expected DelRequest to be a primitive OCTET STRING, not a SEQUENCE")
		}
		writeResult(t, conn, seq, ldaputil.ApplicationDelResponse, ldaputil.ResultSuccess)
		close(done)
		return false
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	if err := cl.Delete("cn=user1,dc=example,dc=com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("server handler never ran")
	}
}
