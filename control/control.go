// Package control implements the LDAP request/response controls used by
// the client, in particular the paged-results control of RFC 2696.
package control

import (
	"fmt"

	"adldap/ber"
)

// Well-known control OIDs.
const (
	// OIDPaging is the simple paged results control (RFC 2696).
	OIDPaging = "1.2.840.113556.1.4.319"
	// OIDManageDsaIT lets a client operate directly on referral objects (RFC 3296).
	OIDManageDsaIT = "2.16.840.1.113730.3.4.2"
)

// OIDMap maps control OIDs to short human-readable descriptions.
var OIDMap = map[string]string{
	OIDPaging:      "Paging",
	OIDManageDsaIT: "Manage DSA IT",
}

// Control is implemented by anything that can encode itself into the
// controls sequence of an LDAP request envelope.
type Control interface {
	// GetOID returns the control's OID.
	GetOID() string
	// Encode returns the control's BER representation.
	Encode() *ber.Packet
	// String returns a human-readable description.
	String() string
}

// Paging implements the simple paged results control (RFC 2696).
type Paging struct {
	// PagingSize is the number of entries the server should return per page.
	PagingSize uint32
	// Cookie is the opaque continuation token; empty on the first request
	// and after the final page.
	Cookie []byte
}

// NewPaging returns a paging control requesting the given page size.
func NewPaging(pagingSize uint32) *Paging {
	return &Paging{PagingSize: pagingSize}
}

// GetOID returns OIDPaging.
func (c *Paging) GetOID() string {
	return OIDPaging
}

// Encode returns the BER representation of the paging control.
func (c *Paging) Encode() *ber.Packet {
	pkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, OIDPaging, "Control OID"))
	pkt.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, false, "Criticality"))
	seq := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Search Control Value")
	seq.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(c.PagingSize), "Paging Size"))
	cookie := ber.NewPacket(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, nil, "Cookie")
	cookie.Value = c.Cookie
	cookie.Data.Write(c.Cookie)
	seq.AppendChild(cookie)
	value := ber.NewPacket(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, nil, "Control Value")
	value.Data.Write(seq.Bytes())
	pkt.AppendChild(value)
	return pkt
}

// String returns a human-readable description.
func (c *Paging) String() string {
	return fmt.Sprintf("Control OID: %s (%q) PagingSize: %d Cookie: %q", OIDMap[OIDPaging], OIDPaging, c.PagingSize, c.Cookie)
}

// SetCookie stores the cookie returned by the server for the next page.
func (c *Paging) SetCookie(cookie []byte) {
	c.Cookie = cookie
}

// ManageDsaIT implements the ManageDsaIT control (RFC 3296).
type ManageDsaIT struct {
	Criticality bool
}

// NewManageDsaIT returns a ManageDsaIT control.
func NewManageDsaIT(criticality bool) *ManageDsaIT {
	return &ManageDsaIT{Criticality: criticality}
}

// GetOID returns OIDManageDsaIT.
func (c *ManageDsaIT) GetOID() string {
	return OIDManageDsaIT
}

// Encode returns the BER representation of the control.
func (c *ManageDsaIT) Encode() *ber.Packet {
	pkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, OIDManageDsaIT, "Control OID"))
	if c.Criticality {
		pkt.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, c.Criticality, "Criticality"))
	}
	return pkt
}

// String returns a human-readable description.
func (c *ManageDsaIT) String() string {
	return fmt.Sprintf("Control OID: %s (%q) Criticality: %t", OIDMap[OIDManageDsaIT], OIDManageDsaIT, c.Criticality)
}

// Find returns the first control of the given OID in controls, or nil.
func Find(controls []Control, oid string) Control {
	for _, c := range controls {
		if c.GetOID() == oid {
			return c
		}
	}
	return nil
}

// Decode parses a single control sequence packet read off the wire.
func Decode(p *ber.Packet) (Control, error) {
	var (
		oid         string
		criticality bool
		value       *ber.Packet
	)
	switch len(p.Children) {
	case 0:
		return nil, fmt.Errorf("control: at least one child required for control type")
	case 1:
		oid = p.Children[0].Value.(string)
	case 2:
		oid = p.Children[0].Value.(string)
		if b, ok := p.Children[1].Value.(bool); ok {
			criticality = b
		} else {
			value = p.Children[1]
		}
	case 3:
		oid = p.Children[0].Value.(string)
		criticality, _ = p.Children[1].Value.(bool)
		value = p.Children[2]
	default:
		return nil, fmt.Errorf("control: more than 3 children is invalid for a control")
	}
	switch oid {
	case OIDManageDsaIT:
		return NewManageDsaIT(criticality), nil
	case OIDPaging:
		c := new(Paging)
		if value == nil {
			return c, nil
		}
		seq, err := ber.ParseBytes(value.Data.Bytes())
		if err != nil {
			return nil, fmt.Errorf("control: failed to decode paging control value: %w", err)
		}
		if len(seq.Children) != 2 {
			return nil, fmt.Errorf("control: malformed paging control value")
		}
		c.PagingSize = uint32(seq.Children[0].Value.(int64))
		c.Cookie = seq.Children[1].Data.Bytes()
		return c, nil
	default:
		return nil, fmt.Errorf("control: unrecognized control OID %q", oid)
	}
}

// Encode wraps controls in the [Controls] envelope ([CTC 0]).
func Encode(controls ...Control) *ber.Packet {
	p := ber.NewPacket(ber.ClassContext, ber.TypeConstructed, 0, nil, "Controls")
	for _, c := range controls {
		p.AppendChild(c.Encode())
	}
	return p
}
