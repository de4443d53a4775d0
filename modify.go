package ldap

import (
	"fmt"

	"adldap/ber"
	"adldap/ldaputil"
)

// Add creates a new entry at dn with the given attributes.
func (cl *Client) Add(dn string, attrs []*Attribute) error {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationAddRequest.Tag(), nil, "Add Request")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, dn, "DN"))
	attrsPkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	for _, a := range attrs {
		attrsPkt.AppendChild(a.encode())
	}
	pkt.AppendChild(attrsPkt)
	resp, err := cl.do(pkt)
	if err != nil {
		return err
	}
	return cl.decodeResult(resp)
}

// Modify sends an attribute change list against dn.
func (cl *Client) Modify(dn string, changes []*ModifyChange) error {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationModifyRequest.Tag(), nil, "Modify Request")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, dn, "DN"))
	changesPkt := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Changes")
	for _, c := range changes {
		changesPkt.AppendChild((&change{operation: c.Operation, attr: *c.Attribute}).encode())
	}
	pkt.AppendChild(changesPkt)
	resp, err := cl.do(pkt)
	if err != nil {
		return err
	}
	return cl.decodeResult(resp)
}

// ModifyChange is one entry in a Modify call's change list: add, delete, or
// replace the given attribute's values.
type ModifyChange struct {
	Operation uint
	Attribute *Attribute
}

// ModifyDN renames dn's RDN to newRDN, optionally moving it under
// newSuperior (pass "" to rename in place). deleteOldRDN controls whether
// the previous RDN's attribute value is removed from the entry.
func (cl *Client) ModifyDN(dn, newRDN string, deleteOldRDN bool, newSuperior string) error {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationModifyDNRequest.Tag(), nil, "Modify DN Request")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, dn, "DN"))
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, newRDN, "New RDN"))
	pkt.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, deleteOldRDN, "Delete Old RDN"))
	if newSuperior != "" {
		pkt.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, newSuperior, "New Superior"))
	}
	resp, err := cl.do(pkt)
	if err != nil {
		return err
	}
	return cl.decodeResult(resp)
}

// Delete removes the entry at dn. Per RFC 4511 §4.8, the DelRequest is a
// primitive OCTET STRING carrying dn directly, not a SEQUENCE.
func (cl *Client) Delete(dn string) error {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypePrimitive, ldaputil.ApplicationDelRequest.Tag(), dn, "Del Request")
	pkt.Data.Write([]byte(dn))
	resp, err := cl.do(pkt)
	if err != nil {
		return err
	}
	return cl.decodeResult(resp)
}

// Compare reports whether dn's attribute holds value. It returns true only
// when the server's resultCode is exactly 0 (success); it does not special-
// case compareTrue (6), so a compareFalse (5) and every other non-zero
// result code are both reported as false, err != nil.
func (cl *Client) Compare(dn, attribute, value string) (bool, error) {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationCompareRequest.Tag(), nil, "Compare Request")
	pkt.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, dn, "DN"))
	ava := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "AttributeValueAssertion")
	ava.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, attribute, "Attribute"))
	ava.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, value, "Value"))
	pkt.AppendChild(ava)
	resp, err := cl.do(pkt)
	if err != nil {
		return false, err
	}
	if ldaputil.Application(resp.Children[1].Tag) != ldaputil.ApplicationCompareResponse {
		return false, NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: unexpected response application tag %d", resp.Children[1].Tag))
	}
	err = cl.decodeResult(resp)
	return err == nil, err
}
