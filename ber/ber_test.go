package ber_test

import (
	"bytes"
	"testing"

	"adldap/ber"
	"github.com/davecgh/go-spew/spew"
)

func TestLengthRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 127, 128, 129, 255, 256, 65535, 65536, 1 << 24, 1<<31 - 1}
	for _, n := range lengths {
		encoded := ber.EncodeCount(n)
		_, decoded, err := ber.ParseCount(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("ParseCount(%d): %v", n, err)
		}
		if decoded != n {
			t.Errorf("length %d round-tripped as %d (encoded=% X)\n%s", n, decoded, encoded, spew.Sdump(encoded))
		}
	}
}

func TestShortFormLength(t *testing.T) {
	for n := 0; n < 128; n++ {
		encoded := ber.EncodeCount(n)
		if len(encoded) != 1 {
			t.Errorf("length %d should encode in short form (1 byte), got %d bytes", n, len(encoded))
		}
	}
}

func TestLongFormLength(t *testing.T) {
	cases := []struct {
		n         int
		wantBytes int
	}{
		{128, 2},
		{1 << 8, 3},
		{1 << 16, 4},
		{1 << 24, 5},
	}
	for _, c := range cases {
		encoded := ber.EncodeCount(c.n)
		if len(encoded) != c.wantBytes {
			t.Errorf("length %d: want %d total bytes (1 length-count byte + %d length), got %d", c.n, c.wantBytes, c.wantBytes-1, len(encoded))
		}
		if encoded[0]&0x80 == 0 {
			t.Errorf("length %d: high bit of first byte should be set", c.n)
		}
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, -256,
		1 << 30, -(1 << 30), 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		encoded := ber.EncodeInt64(v)
		decoded, err := ber.ParseInt64(encoded)
		if err != nil {
			t.Fatalf("ParseInt64(%d): %v", v, err)
		}
		if decoded != v {
			t.Errorf("integer %d round-tripped as %d (encoded=% X)", v, decoded, encoded)
		}
	}
}

func TestIntegerMinimumLength(t *testing.T) {
	cases := []struct {
		v    int64
		want int
	}{
		{0, 1},
		{127, 1},
		{128, 2}, // top bit of 0x80 set, needs leading 0x00
		{-1, 1},
		{-128, 1},
		{-129, 2}, // top bit of 0x7F clear, needs leading 0xFF
	}
	for _, c := range cases {
		encoded := ber.EncodeInt64(c.v)
		if len(encoded) != c.want {
			t.Errorf("EncodeInt64(%d) = % X, want length %d", c.v, encoded, c.want)
		}
	}
}

func TestTLVRoundTrip(t *testing.T) {
	tags := []ber.Tag{ber.TagBoolean, ber.TagInteger, ber.TagOctetString, ber.TagNULL, ber.TagEnumerated, ber.TagSequence, ber.TagSet}
	for _, tag := range tags {
		p := ber.NewString(ber.ClassUniversal, ber.TypePrimitive, tag, "hello world", "")
		encoded := p.Bytes()
		decoded, err := ber.ParseBytes(encoded)
		if err != nil {
			t.Fatalf("tag %v: %v", tag, err)
		}
		if decoded.Tag != tag {
			t.Errorf("tag %v: decoded tag %v", tag, decoded.Tag)
		}
		if !bytes.Equal(decoded.ByteValue, []byte("hello world")) {
			t.Errorf("tag %v: decoded value %q", tag, decoded.ByteValue)
		}
	}
}

func TestOIDRoundTrip(t *testing.T) {
	const oid = "1.2.840.113556.1.4.319"
	want := []byte{0x06, 0x0A, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x14, 0x01, 0x04, 0x82, 0x37}
	p, err := ber.NewOID(ber.ClassUniversal, ber.TypePrimitive, ber.TagObjectIdentifier, oid, "")
	if err != nil {
		t.Fatal(err)
	}
	got := p.Bytes()
	if !bytes.Equal(got, want) {
		t.Errorf("encode(%q) = % X, want % X\n%s", oid, got, want, spew.Sdump(got, want))
	}
	decoded, err := ber.ParseBytes(got)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Value != oid {
		t.Errorf("decode(% X) = %v, want %q", got, decoded.Value, oid)
	}
}

func TestSequenceOfOctetStrings(t *testing.T) {
	seq := ber.NewSequence("")
	seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "cn", ""))
	seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "sn", ""))
	decoded, err := ber.ParseBytes(seq.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Children) != 2 {
		t.Fatalf("want 2 children, got %d", len(decoded.Children))
	}
	if decoded.Children[0].Value != "cn" || decoded.Children[1].Value != "sn" {
		t.Errorf("unexpected children: %s", spew.Sdump(decoded.Children))
	}
}

func TestParseTruncatedBuffer(t *testing.T) {
	// A sequence header declaring 10 bytes of content but supplying none.
	buf := []byte{0x30, 0x0A}
	if _, err := ber.ParseBytes(buf); err == nil {
		t.Error("expected an error decoding a truncated packet, got nil")
	}
}

func TestContextTags(t *testing.T) {
	p := ber.NewString(ber.ClassContext, ber.TypePrimitive, 7, "objectclass", "present")
	if p.Bytes()[0] != 0x80|7 {
		t.Errorf("context primitive tag 7 should encode as 0x%02X, got 0x%02X", 0x80|7, p.Bytes()[0])
	}
	seq := ber.NewPacket(ber.ClassContext, ber.TypeConstructed, 0, nil, "and")
	if seq.Bytes()[0] != 0xA0 {
		t.Errorf("context constructed tag 0 should encode as 0xA0, got 0x%02X", seq.Bytes()[0])
	}
}
