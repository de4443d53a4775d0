package transport_test

import (
	"net"
	"testing"
	"time"

	"adldap/transport"
)

func TestDialWriteAllReadExact(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("world"))
	}()

	c, err := transport.Dial(ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.WriteAll([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, err := c.ReadExact(5)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "world" {
		t.Errorf("ReadExact = %q, want %q", got, "world")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("server goroutine did not finish")
	}
}

func TestDialURLPortZeroFails(t *testing.T) {
	if _, err := transport.DialURL("ldap://127.0.0.1:0"); err == nil {
		t.Error("expected dial to port 0 to fail")
	}
}

func TestDialURLUnknownScheme(t *testing.T) {
	if _, err := transport.DialURL("gopher://example.com"); err == nil {
		t.Error("expected an error for an unknown scheme")
	}
}
