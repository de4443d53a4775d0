package ldap

import (
	"encoding/base64"
	"fmt"
	"strings"

	"adldap/ber"
)

// Attribute is a named, ordered list of raw byte-string values. IsBinary is
// true iff Name contains the case-insensitive substring ";binary", per the
// LDAP convention for attribute options.
type Attribute struct {
	Name     string
	IsBinary bool
	Values   [][]byte
}

// NewAttribute returns an Attribute, deriving IsBinary from name.
func NewAttribute(name string, values ...[]byte) *Attribute {
	return &Attribute{
		Name:     name,
		IsBinary: strings.Contains(strings.ToLower(name), ";binary"),
		Values:   values,
	}
}

// StringValues returns the attribute's values interpreted as UTF-8 text.
func (a *Attribute) StringValues() []string {
	out := make([]string, len(a.Values))
	for i, v := range a.Values {
		out[i] = string(v)
	}
	return out
}

// Readable renders value i the way a debug print or CLI would: base64 when
// the attribute is binary, an escaped form when the value contains control
// bytes (0..8, 10..31) other than a single trailing NUL, and the raw text
// otherwise.
func (a *Attribute) Readable(i int) string {
	v := a.Values[i]
	if a.IsBinary {
		return base64.StdEncoding.EncodeToString(v)
	}
	trimmed := v
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0 {
		trimmed = trimmed[:len(trimmed)-1]
	}
	for _, b := range trimmed {
		if b <= 8 || (b >= 10 && b <= 31) {
			var sb strings.Builder
			for _, b2 := range v {
				fmt.Fprintf(&sb, "\\%02X", b2)
			}
			return sb.String()
		}
	}
	return string(v)
}

// encode returns the BER "attribute { type, SET OF value }" sequence used
// by AddRequest and SearchResultEntry.
func (a *Attribute) encode() *ber.Packet {
	seq := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attribute")
	seq.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, a.Name, "Type"))
	set := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSet, nil, "AttributeValue")
	for _, v := range a.Values {
		set.AppendChild(newOctetBytes(v, "Value"))
	}
	seq.AppendChild(set)
	return seq
}

func newOctetBytes(b []byte, desc string) *ber.Packet {
	p := ber.NewPacket(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, nil, desc)
	p.ByteValue = b
	p.Value = string(b)
	p.Data.Write(b)
	return p
}

// AttributeList is an ordered collection of Attributes with case-insensitive
// lookup by name.
type AttributeList struct {
	attrs []*Attribute
}

// Append adds an attribute to the end of the list.
func (l *AttributeList) Append(a *Attribute) {
	l.attrs = append(l.attrs, a)
}

// Len returns the number of attributes.
func (l *AttributeList) Len() int {
	return len(l.attrs)
}

// All returns the attributes in insertion order.
func (l *AttributeList) All() []*Attribute {
	return l.attrs
}

// Get returns the first attribute matching name, case-insensitively, or nil.
func (l *AttributeList) Get(name string) *Attribute {
	for _, a := range l.attrs {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// GetValues returns the values of the first attribute matching name, or nil.
func (l *AttributeList) GetValues(name string) [][]byte {
	if a := l.Get(name); a != nil {
		return a.Values
	}
	return nil
}

// GetString returns the first value of the first attribute matching name,
// as a string, or "" if absent.
func (l *AttributeList) GetString(name string) string {
	if a := l.Get(name); a != nil && len(a.Values) > 0 {
		return string(a.Values[0])
	}
	return ""
}

// ResultEntry is one directory entry returned by Search.
type ResultEntry struct {
	DN         string
	Attributes AttributeList
}

// ObjectSID returns the entry's objectSid attribute, rendered as its
// canonical "S-1-..." textual form.
func (e *ResultEntry) ObjectSID() (string, error) {
	a := e.Attributes.Get("objectSid")
	if a == nil || len(a.Values) == 0 {
		return "", fmt.Errorf("ldap: entry %q has no objectSid", e.DN)
	}
	return formatObjectSID(a.Values[0])
}

// ObjectGUID returns the entry's objectGUID attribute, rendered as its
// canonical string form.
func (e *ResultEntry) ObjectGUID() (string, error) {
	a := e.Attributes.Get("objectGUID")
	if a == nil || len(a.Values) == 0 {
		return "", fmt.Errorf("ldap: entry %q has no objectGUID", e.DN)
	}
	return formatObjectGUID(a.Values[0])
}

// ResultList is the ordered collection of entries and referrals returned by
// a single Search call.
type ResultList struct {
	Entries   []*ResultEntry
	Referrals []string
}

// Change operation choices for ModifyRequest, per RFC 4511.
const (
	AddAttribute     = 0
	DeleteAttribute  = 1
	ReplaceAttribute = 2
)

// change is one entry in a ModifyRequest's list of attribute changes.
type change struct {
	operation uint
	attr      Attribute
}

func (c *change) encode() *ber.Packet {
	seq := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Change")
	seq.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, uint64(c.operation), "Operation"))
	seq.AppendChild(c.attr.encode())
	return seq
}
