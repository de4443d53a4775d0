package ldap

import (
	"fmt"

	"adldap/ber"
	"adldap/control"
	"adldap/filter"
	"adldap/ldaputil"
)

// Search runs a single search operation (one request, potentially many
// SearchResultEntry/SearchResultReference responses, terminated by a
// SearchResultDone) and returns the aggregated entries and referrals. When
// cl.config.SearchPageSize is positive, it runs SearchPaged with that page
// size instead.
func (cl *Client) Search(baseDN, filterStr string, attributes []string) (*ResultList, error) {
	if cl.config.SearchPageSize > 0 {
		return cl.SearchPaged(baseDN, filterStr, attributes, uint32(cl.config.SearchPageSize))
	}
	result, _, err := cl.searchWithControls(baseDN, filterStr, attributes, nil)
	return result, err
}

func (cl *Client) searchWithControls(baseDN, filterStr string, attributes []string, controls []control.Control) (*ResultList, []control.Control, error) {
	if cl.conn == nil {
		return nil, nil, NewError(ErrorNetwork, fmt.Errorf("ldap: not connected"))
	}
	filterPacket, err := filter.Compile(filterStr)
	if err != nil {
		return nil, nil, NewError(ErrorFilterCompile, err)
	}
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationSearchRequest.Tag(), nil, "Search Request")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, baseDN, "Base DN"))
	pkt.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(cl.config.SearchScope), "Scope"))
	pkt.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(cl.config.SearchAliases), "Deref Aliases"))
	pkt.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.SearchSizeLimit), "Size Limit"))
	pkt.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.SearchTimeLimit), "Time Limit"))
	pkt.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, false, "Types Only"))
	pkt.AppendChild(filterPacket)
	attrsPkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	for _, a := range attributes {
		attrsPkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, a, "Attribute"))
	}
	pkt.AppendChild(attrsPkt)

	seq := cl.nextSeq()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	envelope.AppendChild(pkt)
	if len(controls) > 0 {
		envelope.AppendChild(control.Encode(controls...))
	}
	if err := cl.conn.WriteAll(envelope.Bytes()); err != nil {
		cl.Close()
		return nil, nil, NewError(ErrorNetwork, err)
	}

	result := &ResultList{}
	for {
		resp, err := cl.receive()
		if err != nil {
			cl.Close()
			return result, nil, NewError(ErrorNetwork, err)
		}
		if len(resp.Children) < 2 {
			return result, nil, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: malformed search response envelope"))
		}
		gotSeq, ok := resp.Children[0].Value.(int64)
		if !ok || gotSeq != seq {
			return result, nil, NewError(ErrorUnexpectedMessageID, fmt.Errorf("ldap: response id %v does not match request id %d", resp.Children[0].Value, seq))
		}
		op := resp.Children[1]
		switch ldaputil.Application(op.Tag) {
		case ldaputil.ApplicationSearchResultEntry:
			entry := &ResultEntry{DN: op.Children[0].Value.(string)}
			for _, child := range op.Children[1].Children {
				name := child.Children[0].Value.(string)
				var values [][]byte
				for _, v := range child.Children[1].Children {
					values = append(values, v.ByteValue)
				}
				entry.Attributes.Append(NewAttribute(name, values...))
			}
			result.Entries = append(result.Entries, entry)
		case ldaputil.ApplicationSearchResultReference:
			for _, child := range op.Children {
				if s, ok := child.Value.(string); ok {
					result.Referrals = append(result.Referrals, s)
				}
			}
		case ldaputil.ApplicationSearchResultDone:
			if err := cl.decodeResult(resp); err != nil {
				return result, nil, err
			}
			responseControls, err := decodeControls(resp)
			if err != nil {
				return result, nil, err
			}
			result.Referrals = append(result.Referrals, cl.Referrals...)
			return result, responseControls, nil
		default:
			return result, nil, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: unexpected response application tag %d in search", op.Tag))
		}
	}
}

// SearchFirst runs Search and returns the first entry, or an error if there
// are none.
func (cl *Client) SearchFirst(baseDN, filterStr string, attributes []string) (*ResultEntry, error) {
	result, err := cl.Search(baseDN, filterStr, attributes)
	if err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return nil, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: no entries returned"))
	}
	return result.Entries[0], nil
}

// SearchObject performs a base-object-scope search of dn, temporarily
// overriding the configured search scope and restoring it before returning.
func (cl *Client) SearchObject(dn, filterStr string, attributes []string) (*ResultEntry, error) {
	savedScope := cl.config.SearchScope
	cl.config.SearchScope = ScopeBaseObject
	defer func() { cl.config.SearchScope = savedScope }()
	return cl.SearchFirst(dn, filterStr, attributes)
}

// SearchPaged runs a search using the RFC 2696 paged-results control,
// looping until the server stops returning a cookie, and aggregates every
// page's entries and referrals into one ResultList. pageSize overrides
// cl.config.SearchPageSize for this call; a zero pageSize disables paging
// and runs a single unpaged search.
func (cl *Client) SearchPaged(baseDN, filterStr string, attributes []string, pageSize uint32) (*ResultList, error) {
	if pageSize == 0 {
		result, _, err := cl.searchWithControls(baseDN, filterStr, attributes, nil)
		return result, err
	}
	paging := control.NewPaging(pageSize)
	aggregate := &ResultList{}
	for {
		page, respControls, err := cl.searchWithControls(baseDN, filterStr, attributes, []control.Control{paging})
		if err != nil {
			return aggregate, err
		}
		aggregate.Entries = append(aggregate.Entries, page.Entries...)
		aggregate.Referrals = append(aggregate.Referrals, page.Referrals...)
		returned := control.Find(respControls, control.OIDPaging)
		if returned == nil {
			break
		}
		cookie := returned.(*control.Paging).Cookie
		if len(cookie) == 0 {
			break
		}
		paging.SetCookie(cookie)
	}
	return aggregate, nil
}
