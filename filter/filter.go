// Package filter compiles RFC 4515 LDAP search filter strings into their
// tagged BER form, and decompiles them back into text.
package filter

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"adldap/ber"
)

// Type values, carried as context-class constructed tags on the wire.
const (
	And             ber.Tag = 0
	Or              ber.Tag = 1
	Not             ber.Tag = 2
	EqualityMatch   ber.Tag = 3
	Substrings      ber.Tag = 4
	GreaterOrEqual  ber.Tag = 5
	LessOrEqual     ber.Tag = 6
	Present         ber.Tag = 7
	ApproxMatch     ber.Tag = 8
	ExtensibleMatch ber.Tag = 9
)

// Substring values.
const (
	SubstringsInitial ber.Tag = 0
	SubstringsAny     ber.Tag = 1
	SubstringsFinal   ber.Tag = 2
)

// Rule choices, used inside an ExtensibleMatch.
const (
	RuleMatchingRule ber.Tag = 1
	RuleType         ber.Tag = 2
	RuleMatchValue   ber.Tag = 3
	RuleDNAttributes ber.Tag = 4
)

var star = []byte{'*'}

// Compile converts an RFC 4515 string filter into a BER packet suitable for
// a SearchRequest's filter slot. An empty filter compiles to a BER NULL so
// the enclosing SearchRequest stays well-formed.
func Compile(s string) (*ber.Packet, error) {
	if len(s) == 0 {
		return ber.NewPacket(ber.ClassUniversal, ber.TypePrimitive, ber.TagNULL, nil, "Absolute True Filter"), nil
	}
	// A filter need not be wrapped in its own enclosing parens; the whole
	// string is then taken as the content of an implicit pair.
	wrapped := s
	if s[0] != '(' {
		wrapped = "(" + s + ")"
	}
	p, newPos, err := compile(wrapped, 1)
	if err != nil {
		return nil, err
	}
	switch {
	case newPos > len(wrapped):
		return nil, Error{"unexpected end of filter"}
	case newPos < len(wrapped):
		return nil, Errorf("finished compiling filter with extra at end: %s", wrapped[newPos:])
	}
	return p, nil
}

// Decompile converts a packet representation of a filter into its RFC 4515
// string form.
func Decompile(p *ber.Packet) (string, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte('(')
	var err error
	var childStr string
	switch p.Tag {
	case And:
		buf.WriteByte('&')
		for _, child := range p.Children {
			if childStr, err = Decompile(child); err != nil {
				return "", err
			}
			buf.WriteString(childStr)
		}
	case Or:
		buf.WriteByte('|')
		for _, child := range p.Children {
			if childStr, err = Decompile(child); err != nil {
				return "", err
			}
			buf.WriteString(childStr)
		}
	case Not:
		buf.WriteByte('!')
		if childStr, err = Decompile(p.Children[0]); err != nil {
			return "", err
		}
		buf.WriteString(childStr)
	case Substrings:
		buf.WriteString(string(p.Children[0].Data.Bytes()))
		buf.WriteByte('=')
		for i, child := range p.Children[1].Children {
			if i == 0 && child.Tag != SubstringsInitial {
				buf.Write(star)
			}
			buf.WriteString(Escape(string(child.Data.Bytes())))
			if child.Tag != SubstringsFinal {
				buf.Write(star)
			}
		}
	case EqualityMatch:
		buf.WriteString(string(p.Children[0].Data.Bytes()))
		buf.WriteByte('=')
		buf.WriteString(Escape(string(p.Children[1].Data.Bytes())))
	case GreaterOrEqual:
		buf.WriteString(string(p.Children[0].Data.Bytes()))
		buf.WriteString(">=")
		buf.WriteString(Escape(string(p.Children[1].Data.Bytes())))
	case LessOrEqual:
		buf.WriteString(string(p.Children[0].Data.Bytes()))
		buf.WriteString("<=")
		buf.WriteString(Escape(string(p.Children[1].Data.Bytes())))
	case Present:
		buf.WriteString(string(p.Data.Bytes()))
		buf.WriteString("=*")
	case ApproxMatch:
		buf.WriteString(string(p.Children[0].Data.Bytes()))
		buf.WriteString("~=")
		buf.WriteString(Escape(string(p.Children[1].Data.Bytes())))
	case ExtensibleMatch:
		var attr, matchingRule, value string
		var dnAttributes bool
		for _, child := range p.Children {
			switch child.Tag {
			case RuleMatchingRule:
				matchingRule = string(child.Data.Bytes())
			case RuleType:
				attr = string(child.Data.Bytes())
			case RuleMatchValue:
				value = string(child.Data.Bytes())
			case RuleDNAttributes:
				dnAttributes, _ = child.Value.(bool)
			}
		}
		if len(attr) > 0 {
			buf.WriteString(attr)
		}
		if dnAttributes {
			buf.WriteString(":dn")
		}
		if len(matchingRule) > 0 {
			buf.WriteString(":")
			buf.WriteString(matchingRule)
		}
		buf.WriteString(":=")
		buf.WriteString(Escape(value))
	}
	buf.WriteByte(')')
	return buf.String(), nil
}

// compileSet repeatedly peels one balanced "(...)" subexpression and
// appends its compiled form as a child of parent; used for AND/OR.
func compileSet(s string, pos int, parent *ber.Packet) (int, error) {
	for pos < len(s) && s[pos] == '(' {
		child, newPos, err := compile(s, pos+1)
		if err != nil {
			return pos, err
		}
		pos = newPos
		parent.AppendChild(child)
	}
	if pos == len(s) {
		return pos, Error{"unexpected end of filter"}
	}
	return pos + 1, nil
}

func compile(s string, pos int) (*ber.Packet, int, error) {
	var (
		p   *ber.Packet
		err error
	)
	newPos := pos
	r, width := utf8.DecodeRuneInString(s[newPos:])
	switch r {
	case utf8.RuneError:
		return nil, 0, Errorf("error reading rune at position %d", newPos)
	case '(':
		p, newPos, err = compile(s, pos+width)
		newPos++
		return p, newPos, err
	case '&':
		p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, And, nil, "")
		newPos, err = compileSet(s, pos+width, p)
		return p, newPos, err
	case '|':
		p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, Or, nil, "")
		newPos, err = compileSet(s, pos+width, p)
		return p, newPos, err
	case '!':
		p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, Not, nil, "")
		var child *ber.Packet
		child, newPos, err = compile(s, pos+width)
		p.AppendChild(child)
		return p, newPos, err
	default:
		return compileAtom(s, pos)
	}
}

// compileAtom parses a single attrDesc op value expression (no leading
// '&', '|', '!', or '(').
func compileAtom(s string, pos int) (*ber.Packet, int, error) {
	const (
		stateReadingAttr = iota
		stateReadingExtensibleMatchingRule
		stateReadingCondition
	)
	var p *ber.Packet
	state := stateReadingAttr
	attribute := bytes.NewBuffer(nil)
	extensibleDNAttributes := false
	extensibleMatchingRule := bytes.NewBuffer(nil)
	condition := bytes.NewBuffer(nil)
	newPos := pos
	for newPos < len(s) {
		remaining := s[newPos:]
		r, width := utf8.DecodeRuneInString(remaining)
		if r == ')' {
			break
		}
		if r == utf8.RuneError {
			return p, newPos, Errorf("error reading rune at position %d", newPos)
		}
		switch state {
		case stateReadingAttr:
			switch {
			case r == ':' && strings.HasPrefix(remaining, ":dn:="):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, ExtensibleMatch, nil, "")
				extensibleDNAttributes = true
				state = stateReadingCondition
				newPos += 5
			case r == ':' && strings.HasPrefix(remaining, ":dn:"):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, ExtensibleMatch, nil, "")
				extensibleDNAttributes = true
				state = stateReadingExtensibleMatchingRule
				newPos += 4
			case r == ':' && strings.HasPrefix(remaining, ":="):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, ExtensibleMatch, nil, "")
				state = stateReadingCondition
				newPos += 2
			case r == ':':
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, ExtensibleMatch, nil, "")
				state = stateReadingExtensibleMatchingRule
				newPos++
			case r == '=':
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, EqualityMatch, nil, "")
				state = stateReadingCondition
				newPos++
			case r == '>' && strings.HasPrefix(remaining, ">="):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, GreaterOrEqual, nil, "")
				state = stateReadingCondition
				newPos += 2
			case r == '<' && strings.HasPrefix(remaining, "<="):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, LessOrEqual, nil, "")
				state = stateReadingCondition
				newPos += 2
			case r == '~' && strings.HasPrefix(remaining, "~="):
				p = ber.NewPacket(ber.ClassContext, ber.TypeConstructed, ApproxMatch, nil, "")
				state = stateReadingCondition
				newPos += 2
			default:
				attribute.WriteRune(r)
				newPos += width
			}
		case stateReadingExtensibleMatchingRule:
			switch {
			case r == ':' && strings.HasPrefix(remaining, ":="):
				state = stateReadingCondition
				newPos += 2
			default:
				extensibleMatchingRule.WriteRune(r)
				newPos += width
			}
		case stateReadingCondition:
			condition.WriteRune(r)
			newPos += width
		}
	}
	if newPos == len(s) {
		return p, newPos, Error{"unexpected end of filter"}
	}
	if p == nil {
		return p, newPos, Error{"error parsing filter"}
	}
	switch {
	case p.Tag == ExtensibleMatch:
		if extensibleMatchingRule.Len() > 0 {
			p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, RuleMatchingRule, extensibleMatchingRule.String(), ""))
		}
		if attribute.Len() > 0 {
			p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, RuleType, attribute.String(), ""))
		}
		decoded, decErr := Unescape(condition.Bytes())
		if decErr != nil {
			return p, newPos, decErr
		}
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, RuleMatchValue, decoded, ""))
		if extensibleDNAttributes {
			p.AppendChild(ber.NewBoolean(ber.ClassContext, ber.TypePrimitive, RuleDNAttributes, extensibleDNAttributes, ""))
		}
	case p.Tag == EqualityMatch && bytes.Equal(condition.Bytes(), star):
		p = ber.NewString(ber.ClassContext, ber.TypePrimitive, Present, attribute.String(), "")
	case p.Tag == EqualityMatch && bytes.IndexByte(condition.Bytes(), '*') > -1:
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, attribute.String(), ""))
		p.Tag = Substrings
		seq := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "")
		parts := bytes.Split(condition.Bytes(), star)
		for i, part := range parts {
			if len(part) == 0 {
				continue
			}
			var tag ber.Tag
			switch i {
			case 0:
				tag = SubstringsInitial
			case len(parts) - 1:
				tag = SubstringsFinal
			default:
				tag = SubstringsAny
			}
			decoded, decErr := Unescape(part)
			if decErr != nil {
				return p, newPos, decErr
			}
			seq.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, tag, decoded, ""))
		}
		p.AppendChild(seq)
	default:
		decoded, decErr := Unescape(condition.Bytes())
		if decErr != nil {
			return p, newPos, decErr
		}
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, attribute.String(), ""))
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, decoded, ""))
	}
	newPos++
	return p, newPos, nil
}

// Unescape implements the hex-triplet decoding ("ABC\xx\xx\xx" -> literal
// bytes) of RFC 4515 section 3, plus CR/LF line-folding: a backslash
// immediately followed by a CR, an LF, or a CR LF pair is a continuation and
// contributes no bytes to the decoded value.
func Unescape(src []byte) (string, error) {
	var (
		buffer  bytes.Buffer
		offset  int
		reader  = bytes.NewReader(src)
		byteHex []byte
		byteVal []byte
	)
	for {
		runeVal, runeSize, err := reader.ReadRune()
		if err == io.EOF {
			return buffer.String(), nil
		} else if err != nil {
			return "", Errorf("failed to read filter: %v", err)
		} else if runeVal == unicode.ReplacementChar {
			return "", Errorf("error reading rune at position %d", offset)
		}
		if runeVal == '\\' {
			peek, peekErr := reader.ReadByte()
			if peekErr == nil && (peek == '\r' || peek == '\n') {
				// line folding: a backslash before CR/LF is a continuation
				offset += runeSize + 1
				if peek == '\r' {
					if next, nextErr := reader.ReadByte(); nextErr == nil {
						if next == '\n' {
							offset++
						} else if err := reader.UnreadByte(); err != nil {
							return "", err
						}
					}
				}
				continue
			}
			if peekErr == nil {
				if err := reader.UnreadByte(); err != nil {
					return "", err
				}
			}
			if byteHex == nil {
				byteHex = make([]byte, 2)
				byteVal = make([]byte, 1)
			}
			if _, err := io.ReadFull(reader, byteHex); err != nil {
				if err == io.ErrUnexpectedEOF {
					return "", Error{"missing characters for escape in filter"}
				}
				return "", Errorf("invalid characters for escape in filter: %v", err)
			}
			if _, err := hex.Decode(byteVal, byteHex); err != nil {
				return "", Errorf("invalid characters for escape in filter: %v", err)
			}
			buffer.Write(byteVal)
		} else {
			buffer.WriteRune(runeVal)
		}
		offset += runeSize
	}
}

// Escape escapes the special characters '(', ')', '*', '\' and any byte
// outside 0 < c < 0x80 in s, per RFC 4515 section 3.
func Escape(s string) string {
	escape := 0
	for i := 0; i < len(s); i++ {
		if mustEscape(s[i]) {
			escape++
		}
	}
	if escape == 0 {
		return s
	}
	buf := make([]byte, len(s)+escape*2)
	for i, j := 0, 0; i < len(s); i++ {
		c := s[i]
		if mustEscape(c) {
			buf[j+0] = '\\'
			buf[j+1] = hexChars[c>>4]
			buf[j+2] = hexChars[c&0xf]
			j += 3
		} else {
			buf[j] = c
			j++
		}
	}
	return string(buf)
}

var hexChars = "0123456789abcdef"

func mustEscape(c byte) bool {
	return c > 0x7f || c == '(' || c == ')' || c == '\\' || c == '*' || c == 0
}

// Error is a filter compile/decompile error.
type Error struct {
	Msg string
}

func (err Error) Error() string {
	return err.Msg
}

// Errorf formats a Error.
func Errorf(s string, v ...interface{}) error {
	return Error{fmt.Sprintf(s, v...)}
}
