package ldaputil_test

import (
	"testing"

	"adldap/ldaputil"
)

func TestFormatObjectSID(t *testing.T) {
	// S-1-5-21-1013
	b := []byte{
		0x01, 0x02, // revision, sub-authority count
		0x00, 0x00, 0x00, 0x00, 0x00, 0x05, // identifier authority (5, 48-bit big-endian)
		0x15, 0x00, 0x00, 0x00, // sub-authority 0: 21
		0xF5, 0x03, 0x00, 0x00, // sub-authority 1: 1013
	}
	got, err := ldaputil.FormatObjectSID(b)
	if err != nil {
		t.Fatal(err)
	}
	want := "S-1-5-21-1013"
	if got != want {
		t.Errorf("FormatObjectSID = %q, want %q", got, want)
	}
}

func TestFormatObjectGUIDRoundTrip(t *testing.T) {
	raw := []byte{
		0x4d, 0xbc, 0xa7, 0x4f,
		0x1a, 0x0e,
		0x3c, 0x4f,
		0x9f, 0x0e,
		0x6e, 0x6b, 0x6c, 0x6b, 0x6c, 0x6b,
	}
	s, err := ldaputil.FormatObjectGUID(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 36 {
		t.Fatalf("formatted GUID %q has unexpected length", s)
	}
	hexForm, err := ldaputil.WellKnownGUIDHex(raw)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ldaputil.ParseWellKnownGUIDHex(hexForm)
	if err != nil {
		t.Fatal(err)
	}
	for i := range raw {
		if raw[i] != back[i] {
			t.Fatalf("round trip byte %d: got %x want %x", i, back[i], raw[i])
		}
	}
}

func TestDNToCN(t *testing.T) {
	got, err := ldaputil.DNToCN("CN=User1,OU=Users,OU=London,DC=xyz,DC=local")
	if err != nil {
		t.Fatal(err)
	}
	want := "xyz.local/london/users/user1"
	if got != want {
		t.Errorf("DNToCN = %q, want %q", got, want)
	}
}

func TestDNToCNNoCN(t *testing.T) {
	got, err := ldaputil.DNToCN("OU=Users,DC=xyz,DC=local")
	if err != nil {
		t.Fatal(err)
	}
	want := "xyz.local/users"
	if got != want {
		t.Errorf("DNToCN = %q, want %q", got, want)
	}
}

func TestDNToCNMalformed(t *testing.T) {
	if _, err := ldaputil.DNToCN("not a dn"); err == nil {
		t.Error("expected an error for a malformed DN")
	}
}

func TestWellKnownGUIDs(t *testing.T) {
	guid, ok := ldaputil.WellKnownGUIDs["Computers"]
	if !ok {
		t.Fatal("Computers well-known GUID not found")
	}
	if guid != ldaputil.WellKnownComputers {
		t.Errorf("Computers GUID = %q, want %q", guid, ldaputil.WellKnownComputers)
	}
	if len(guid) != 32 {
		t.Errorf("well-known GUID %q is not 32 hex digits", guid)
	}
}

func TestApplicationString(t *testing.T) {
	if ldaputil.ApplicationBindRequest.String() != "BindRequest" {
		t.Errorf("BindRequest.String() = %q", ldaputil.ApplicationBindRequest.String())
	}
	if ldaputil.Application(99).String() != "Unknown" {
		t.Errorf("unknown application should stringify to Unknown")
	}
}
