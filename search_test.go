package ldap

import (
	"net"
	"testing"

	"adldap/ber"
	"adldap/control"
	"adldap/ldaputil"
)

func writeSearchEntry(t *testing.T, conn net.Conn, seq int64, dn string, attrs map[string][]string) {
	t.Helper()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	op := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationSearchResultEntry.Tag(), nil, "SearchResultEntry")
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, dn, "DN"))
	attrsPkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	for name, values := range attrs {
		seqPkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attribute")
		seqPkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, name, "Type"))
		set := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSet, nil, "Values")
		for _, v := range values {
			set.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, v, "Value"))
		}
		seqPkt.AppendChild(set)
		attrsPkt.AppendChild(seqPkt)
	}
	op.AppendChild(attrsPkt)
	envelope.AppendChild(op)
	if _, err := conn.Write(envelope.Bytes()); err != nil {
		t.Fatalf("write search entry: %v", err)
	}
}

func writeSearchDone(t *testing.T, conn net.Conn, seq int64, resultCode uint16, cookie []byte) {
	t.Helper()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	op := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationSearchResultDone.Tag(), nil, "SearchResultDone")
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(resultCode), "resultCode"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "matchedDN"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "diagnosticMessage"))
	envelope.AppendChild(op)
	if cookie != nil {
		paging := &control.Paging{PagingSize: 0, Cookie: cookie}
		envelope.AppendChild(control.Encode(paging))
	}
	if _, err := conn.Write(envelope.Bytes()); err != nil {
		t.Fatalf("write search done: %v", err)
	}
}

func TestSearchAggregatesEntries(t *testing.T) {
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		writeSearchEntry(t, conn, seq, "cn=user1,dc=example,dc=com", map[string][]string{"cn": {"user1"}})
		writeSearchEntry(t, conn, seq, "cn=user2,dc=example,dc=com", map[string][]string{"cn": {"user2"}})
		writeSearchDone(t, conn, seq, ldaputil.ResultSuccess, nil)
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	result, err := cl.Search("dc=example,dc=com", "(objectclass=*)", []string{"cn"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if got := result.Entries[0].Attributes.GetString("cn"); got != "user1" {
		t.Fatalf("expected cn=user1, got %q", got)
	}
}

// TestSearchPagedAggregateEqualsUnpaged exercises the property from the
// state-machine section: paging over two pages of one entry each must
// return the same total entries as a single unpaged page would.
func TestSearchPagedAggregateEqualsUnpaged(t *testing.T) {
	page := 0
	fs := newFakeServer(t, func(conn net.Conn, envelope *ber.Packet) bool {
		seq := envelope.Children[0].Value.(int64)
		page++
		switch page {
		case 1:
			writeSearchEntry(t, conn, seq, "cn=user1,dc=example,dc=com", map[string][]string{"cn": {"user1"}})
			writeSearchDone(t, conn, seq, ldaputil.ResultSuccess, []byte("cookie-1"))
		case 2:
			writeSearchEntry(t, conn, seq, "cn=user2,dc=example,dc=com", map[string][]string{"cn": {"user2"}})
			writeSearchDone(t, conn, seq, ldaputil.ResultSuccess, nil)
			return false
		}
		return true
	})
	defer fs.Close()
	cl := dialClient(t, fs.addr())
	defer cl.Close()
	result, err := cl.SearchPaged("dc=example,dc=com", "(objectclass=*)", []string{"cn"}, 1)
	if err != nil {
		t.Fatalf("search paged: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 aggregated entries across pages, got %d", len(result.Entries))
	}
}
