package ldaputil

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FormatObjectSID renders the wire bytes of an Active Directory objectSid
// attribute (SID, binary form per MS-DTYP §2.4.2) as its canonical textual
// form, e.g. "S-1-5-21-3623811015-3361044348-30300820-1013".
func FormatObjectSID(b []byte) (string, error) {
	if len(b) < 8 {
		return "", fmt.Errorf("ldaputil: objectSid too short: %d bytes", len(b))
	}
	r := bytes.NewReader(b)

	var revision, subAuthorityCount uint8
	if err := binary.Read(r, binary.LittleEndian, &revision); err != nil {
		return "", fmt.Errorf("ldaputil: reading objectSid revision: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &subAuthorityCount); err != nil {
		return "", fmt.Errorf("ldaputil: reading objectSid sub-authority count: %w", err)
	}

	var authorityParts [3]uint16
	if err := binary.Read(r, binary.BigEndian, &authorityParts); err != nil {
		return "", fmt.Errorf("ldaputil: reading objectSid identifier authority: %w", err)
	}
	identifierAuthority := uint64(authorityParts[0])<<32 | uint64(authorityParts[1])<<16 | uint64(authorityParts[2])

	sid := fmt.Sprintf("S-%d-%d", revision, identifierAuthority)
	for i := uint8(0); i < subAuthorityCount; i++ {
		var sub uint32
		if err := binary.Read(r, binary.LittleEndian, &sub); err != nil {
			return "", fmt.Errorf("ldaputil: reading objectSid sub-authority %d: %w", i, err)
		}
		sid += fmt.Sprintf("-%d", sub)
	}
	return sid, nil
}
