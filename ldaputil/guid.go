package ldaputil

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// FormatObjectGUID renders the wire bytes of an Active Directory objectGUID
// attribute as the RFC 4122 string form (e.g.
// "4fa7bc4d-0e1a-4f3c-9f0e-6e6b6c6b6c6b"). objectGUID is stored on the wire
// with the first three fields byte-swapped to little-endian, as the other
// Microsoft GUID/UUID wire formats do; the last two fields are big-endian.
func FormatObjectGUID(b []byte) (string, error) {
	id, err := parseObjectGUID(b)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// WellKnownGUIDHex renders the wire bytes of an objectGUID as the 32
// character uppercase hex string used by the well-known object DN syntax
// "<WKGUID=32HEXDIGIT,baseDN>".
func WellKnownGUIDHex(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("ldaputil: objectGUID must be 16 bytes, got %d", len(b))
	}
	return fmt.Sprintf("%X", b), nil
}

func parseObjectGUID(b []byte) (uuid.UUID, error) {
	if len(b) != 16 {
		return uuid.UUID{}, fmt.Errorf("ldaputil: objectGUID must be 16 bytes, got %d", len(b))
	}
	reordered := make([]byte, 16)
	reordered[0], reordered[1], reordered[2], reordered[3] = b[3], b[2], b[1], b[0]
	reordered[4], reordered[5] = b[5], b[4]
	reordered[6], reordered[7] = b[7], b[6]
	copy(reordered[8:], b[8:])
	return uuid.FromBytes(reordered)
}

// ParseWellKnownGUIDHex parses the 32 hex digit form back into raw objectGUID
// wire bytes, the inverse of WellKnownGUIDHex, for constructing
// "<WKGUID=...>" search base strings from a known container GUID constant.
func ParseWellKnownGUIDHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("ldaputil: invalid well-known GUID hex %q: %w", s, err)
	}
	if len(b) != 16 {
		return nil, fmt.Errorf("ldaputil: well-known GUID hex must decode to 16 bytes, got %d", len(b))
	}
	return b, nil
}
