package ldap

import (
	"fmt"
	"strings"

	"adldap/ldaputil"
)

// DiscoverRootDN reads rootDomainNamingContext from the root DSE (base
// object at the empty DN) and caches it for RootDN.
func (cl *Client) DiscoverRootDN() (string, error) {
	savedScope := cl.config.SearchScope
	cl.config.SearchScope = ScopeBaseObject
	entry, err := cl.SearchFirst("", "(objectclass=*)", []string{"rootDomainNamingContext"})
	cl.config.SearchScope = savedScope
	if err != nil {
		return "", err
	}
	root := entry.Attributes.GetString("rootDomainNamingContext")
	if root == "" {
		return "", NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: root DSE has no rootDomainNamingContext"))
	}
	cl.rootDn = root
	return root, nil
}

// GetWellKnownObjectDN resolves a well-known container name (Users,
// Computers, DomainControllers, ...) to its DN by reading rootDN's
// wellKnownObjects attribute, whose values are formatted
// "B:32:<32-hex-GUID>:<DN>", and matching against ldaputil.WellKnownGUIDs.
func (cl *Client) GetWellKnownObjectDN(name string) (string, error) {
	guid, ok := ldaputil.WellKnownGUIDs[name]
	if !ok {
		return "", fmt.Errorf("ldap: unknown well-known object name %q", name)
	}
	rootDn := cl.rootDn
	if rootDn == "" {
		var err error
		rootDn, err = cl.DiscoverRootDN()
		if err != nil {
			return "", err
		}
	}
	entry, err := cl.SearchObject(rootDn, "(objectclass=*)", []string{"wellKnownObjects"})
	if err != nil {
		return "", err
	}
	attr := entry.Attributes.Get("wellKnownObjects")
	if attr == nil {
		return "", fmt.Errorf("ldap: %q has no wellKnownObjects attribute", rootDn)
	}
	for _, raw := range attr.StringValues() {
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) != 4 || parts[0] != "B" || parts[1] != "32" {
			continue
		}
		if strings.EqualFold(parts[2], guid) {
			return parts[3], nil
		}
	}
	return "", fmt.Errorf("ldap: no wellKnownObjects entry for %q under %q", name, rootDn)
}
