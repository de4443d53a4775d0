package ldap

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// AddComputer creates a computer account named name under parentDN. If an
// entry with the same name already exists, deleteIfPresent controls whether
// it is deleted first; when it is not, AddComputer returns true, an empty
// error, and a message explaining that the object is already present.
// Callers that need to distinguish "created" from "already present" must
// inspect that message, not just the boolean.
func (cl *Client) AddComputer(name, parentDN, password string, deleteIfPresent bool) (bool, string, error) {
	dn := fmt.Sprintf("CN=%s,%s", name, parentDN)
	_, err := cl.SearchObject(dn, "(objectclass=*)", []string{"cn"})
	exists := err == nil
	if exists {
		if !deleteIfPresent {
			return true, fmt.Sprintf("ldap: computer %q already present under %q", name, parentDN), nil
		}
		if err := cl.Delete(dn); err != nil {
			return false, "", fmt.Errorf("ldap: deleting existing computer %q: %w", dn, err)
		}
	}
	upper := strings.ToUpper(name)
	attrs := []*Attribute{
		NewAttribute("objectClass", []byte("computer")),
		NewAttribute("cn", []byte(name)),
		NewAttribute("sAMAccountName", []byte(upper+"$")),
		NewAttribute("userAccountControl", []byte("4096")),
	}
	if password != "" {
		quoted := `"` + password + `"`
		u16 := utf16.Encode([]rune(quoted))
		buf := make([]byte, len(u16)*2)
		for i, r := range u16 {
			buf[2*i] = byte(r)
			buf[2*i+1] = byte(r >> 8)
		}
		attrs = append(attrs, NewAttribute("unicodePwd", buf))
	}
	if err := cl.Add(dn, attrs); err != nil {
		return false, "", err
	}
	return true, "", nil
}
