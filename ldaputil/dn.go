package ldaputil

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"adldap/ber"
)

// AttributeTypeAndValue is an attributeTypeAndValue from RFC 4514.
type AttributeTypeAndValue struct {
	Type  string
	Value string
}

// Equal reports whether a is equivalent to other; the attribute type is
// compared case-insensitively, the value case-sensitively.
func (a *AttributeTypeAndValue) Equal(other *AttributeTypeAndValue) bool {
	return strings.EqualFold(a.Type, other.Type) && a.Value == other.Value
}

// RelativeDN is a relativeDistinguishedName from RFC 4514: one or more
// AttributeTypeAndValues joined by '+'.
type RelativeDN struct {
	Attributes []*AttributeTypeAndValue
}

// Equal reports whether r and other have the same attributes, in any order,
// per RFC 4517 §4.2.15 (distinguishedNameMatch).
func (r *RelativeDN) Equal(other *RelativeDN) bool {
	if len(r.Attributes) != len(other.Attributes) {
		return false
	}
	return r.hasAllAttributes(other.Attributes) && other.hasAllAttributes(r.Attributes)
}

func (r *RelativeDN) hasAllAttributes(attrs []*AttributeTypeAndValue) bool {
	for _, attr := range attrs {
		found := false
		for _, mine := range r.Attributes {
			if mine.Equal(attr) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// DN is a distinguishedName from RFC 4514.
type DN struct {
	RDNs []*RelativeDN
}

// Equal reports whether d and other have the same ordered sequence of RDNs,
// per RFC 4517 §4.2.15 (distinguishedNameMatch).
func (d *DN) Equal(other *DN) bool {
	if len(d.RDNs) != len(other.RDNs) {
		return false
	}
	for i := range d.RDNs {
		if !d.RDNs[i].Equal(other.RDNs[i]) {
			return false
		}
	}
	return true
}

// AncestorOf reports whether other consists of one or more RDNs followed by
// all of d's RDNs, e.g. "ou=widgets,o=acme.com" is an ancestor of
// "ou=sprockets,ou=widgets,o=acme.com" but not of itself.
func (d *DN) AncestorOf(other *DN) bool {
	if len(d.RDNs) >= len(other.RDNs) {
		return false
	}
	otherRDNs := other.RDNs[len(other.RDNs)-len(d.RDNs):]
	for i := range d.RDNs {
		if !d.RDNs[i].Equal(otherRDNs[i]) {
			return false
		}
	}
	return true
}

// ParseDN parses str as a distinguishedName per RFC 4514.
func ParseDN(str string) (*DN, error) {
	dn := new(DN)
	rdn := new(RelativeDN)
	buffer := bytes.Buffer{}
	attribute := new(AttributeTypeAndValue)
	escaping := false
	unescapedTrailingSpaces := 0
	stringFromBuffer := func() string {
		s := buffer.String()
		s = s[0 : len(s)-unescapedTrailingSpaces]
		buffer.Reset()
		unescapedTrailingSpaces = 0
		return s
	}
	for i := 0; i < len(str); i++ {
		char := str[i]
		switch {
		case escaping:
			unescapedTrailingSpaces = 0
			escaping = false
			switch char {
			case ' ', '"', '#', '+', ',', ';', '<', '=', '>', '\\':
				buffer.WriteByte(char)
				continue
			}
			if len(str) == i+1 {
				return nil, fmt.Errorf("ldaputil: got corrupted escaped character in DN %q", str)
			}
			dst := []byte{0}
			n, err := hex.Decode(dst, []byte(str[i:i+2]))
			if err != nil {
				return nil, fmt.Errorf("ldaputil: failed to decode escaped character: %w", err)
			} else if n != 1 {
				return nil, fmt.Errorf("ldaputil: expected 1 byte when un-escaping, got %d", n)
			}
			buffer.WriteByte(dst[0])
			i++
		case char == '\\':
			unescapedTrailingSpaces = 0
			escaping = true
		case char == '=':
			attribute.Type = stringFromBuffer()
			// Value starting with '#' is BER-encoded; decode and fast-forward.
			if len(str) > i+1 && str[i+1] == '#' {
				i += 2
				index := strings.IndexAny(str[i:], ",+")
				data := str
				if index > 0 {
					data = str[i : i+index]
				} else {
					data = str[i:]
				}
				rawBER, err := hex.DecodeString(data)
				if err != nil {
					return nil, fmt.Errorf("ldaputil: failed to decode BER-encoded DN value: %w", err)
				}
				p, err := ber.ParseBytes(rawBER)
				if err != nil {
					return nil, fmt.Errorf("ldaputil: failed to decode BER packet in DN value: %w", err)
				}
				buffer.WriteString(p.Data.String())
				i += len(data) - 1
			}
		case char == ',' || char == '+':
			if len(attribute.Type) == 0 {
				return nil, fmt.Errorf("ldaputil: incomplete type, value pair in DN %q", str)
			}
			attribute.Value = stringFromBuffer()
			rdn.Attributes = append(rdn.Attributes, attribute)
			attribute = new(AttributeTypeAndValue)
			if char == ',' {
				dn.RDNs = append(dn.RDNs, rdn)
				rdn = new(RelativeDN)
			}
		case char == ' ' && buffer.Len() == 0:
			continue // ignore unescaped leading spaces
		default:
			if char == ' ' {
				unescapedTrailingSpaces++
			} else {
				unescapedTrailingSpaces = 0
			}
			buffer.WriteByte(char)
		}
	}
	if buffer.Len() > 0 {
		if len(attribute.Type) == 0 {
			return nil, fmt.Errorf("ldaputil: DN ended with incomplete type, value pair: %q", str)
		}
		attribute.Value = stringFromBuffer()
		rdn.Attributes = append(rdn.Attributes, attribute)
		dn.RDNs = append(dn.RDNs, rdn)
	}
	if len(dn.RDNs) == 0 {
		return nil, fmt.Errorf("ldaputil: empty DN")
	}
	return dn, nil
}

// DNToCN converts a Distinguished Name to the slash-separated canonical name
// form used by Active Directory administrative tools: DC components join
// left-to-right with '.', then OU components are prepended in the DN's
// reading order joined by '/', then any CN components are appended last in
// the same reading order, e.g.
// "CN=User1,OU=Users,OU=London,DC=xyz,DC=local" becomes
// "xyz.local/london/users/user1".
func DNToCN(dn string) (string, error) {
	parsed, err := ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("ldaputil: DNToCN: %w", err)
	}
	var domainParts []string
	var pathParts []string
	var cnParts []string
	// DN.RDNs runs leaf-to-root (RDNs[0] is the leftmost, most specific
	// component). DC components already read left-to-right as the FQDN
	// ("dc=xyz,dc=local" -> "xyz.local"), so they're joined in encounter
	// order; OU and CN components read root-to-leaf as a path, so they're
	// each collected in encounter order and reversed below.
	for i := 0; i < len(parsed.RDNs); i++ {
		rdn := parsed.RDNs[i]
		if len(rdn.Attributes) == 0 {
			return "", fmt.Errorf("ldaputil: DNToCN: empty RDN in %q", dn)
		}
		attr := rdn.Attributes[0]
		switch strings.ToUpper(attr.Type) {
		case "DC":
			domainParts = append(domainParts, attr.Value)
		case "OU":
			pathParts = append(pathParts, strings.ToLower(attr.Value))
		case "CN":
			cnParts = append(cnParts, strings.ToLower(attr.Value))
		default:
			return "", fmt.Errorf("ldaputil: DNToCN: unsupported RDN type %q in %q", attr.Type, dn)
		}
	}
	if len(domainParts) == 0 {
		return "", fmt.Errorf("ldaputil: DNToCN: no DC components in %q", dn)
	}
	for i, j := 0, len(pathParts)-1; i < j; i, j = i+1, j-1 {
		pathParts[i], pathParts[j] = pathParts[j], pathParts[i]
	}
	for i, j := 0, len(cnParts)-1; i < j; i, j = i+1, j-1 {
		cnParts[i], cnParts[j] = cnParts[j], cnParts[i]
	}
	result := strings.Join(domainParts, ".")
	if len(pathParts) > 0 {
		result += "/" + strings.Join(pathParts, "/")
	}
	if len(cnParts) > 0 {
		result += "/" + strings.Join(cnParts, "/")
	}
	return result, nil
}
