package ldap

import (
	"adldap/ber"
	"adldap/ldaputil"
)

// Extended sends a generic ExtendedRequest carrying oid and an optional
// value, and returns the response's extended name/value pair (if the server
// sent one) alongside the usual result-code error.
func (cl *Client) Extended(oid string, value []byte) (string, []byte, error) {
	pkt := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationExtendedRequest.Tag(), nil, "Extended Request")
	pkt.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, oid, "Extended Request Name"))
	if value != nil {
		p := ber.NewPacket(ber.ClassContext, ber.TypePrimitive, 1, nil, "Extended Request Value")
		p.ByteValue = value
		p.Data.Write(value)
		pkt.AppendChild(p)
	}
	resp, err := cl.do(pkt)
	if err != nil {
		return "", nil, err
	}
	if err := cl.decodeResult(resp); err != nil {
		return "", nil, err
	}
	op := resp.Children[1]
	var extName string
	var extValue []byte
	for _, child := range op.Children {
		switch child.Tag {
		case 10:
			extName = string(child.Data.Bytes())
		case 11:
			extValue = child.Data.Bytes()
		}
	}
	cl.ExtName = extName
	cl.ExtValue = extValue
	return extName, extValue, nil
}
