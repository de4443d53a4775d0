package ldap

import "adldap/ldaputil"

func formatObjectSID(b []byte) (string, error) {
	return ldaputil.FormatObjectSID(b)
}

func formatObjectGUID(b []byte) (string, error) {
	return ldaputil.FormatObjectGUID(b)
}
