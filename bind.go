package ldap

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Azure/go-ntlmssp"

	"adldap/ber"
	"adldap/ldaputil"
)

// Login is an alias for Bind, matching the operation name used elsewhere in
// the administrative tooling this client supports.
func (cl *Client) Login(username, password string) error {
	return cl.Bind(username, password)
}

// Bind performs a simple (plaintext) bind. An empty username and password
// selects anonymous bind; the password travels in the clear unless the
// connection is already TLS-protected.
func (cl *Client) Bind(username, password string) error {
	req := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationBindRequest.Tag(), nil, "Bind Request")
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.Version), "Version"))
	req.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, username, "User Name"))
	req.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, password, "Password"))
	resp, err := cl.do(req)
	if err != nil {
		cl.bound = false
		return err
	}
	err = cl.decodeResult(resp)
	cl.bound = err == nil
	return err
}

// BindSaslDigestMd5 performs the SASL DIGEST-MD5 bind defined by RFC 2831
// in two round trips: an initial mechanism negotiation answered by a
// challenge carrying nonce/realm/authzid, then a computed response.
func (cl *Client) BindSaslDigestMd5(host, username, password string) error {
	if password == "" {
		return NewError(ErrorEmptyPassword, fmt.Errorf("ldap: empty password not allowed by the client"))
	}
	req := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationBindRequest.Tag(), nil, "Bind Request")
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.Version), "Version"))
	req.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "User Name"))
	auth := ber.NewPacket(ber.ClassContext, ber.TypeConstructed, 3, "", "authentication")
	auth.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "DIGEST-MD5", "SASL Mech"))
	req.AppendChild(auth)
	resp, err := cl.do(req)
	if err != nil {
		cl.bound = false
		return err
	}
	op := resp.Children[1]
	if len(op.Children) != 4 || op.Children[0].Tag != ber.TagEnumerated || op.Children[0].Value.(int64) != ldaputil.ResultSaslBindInProgress {
		err = cl.decodeResult(resp)
		cl.bound = err == nil
		return err
	}
	challenge := op.Children[3].Data.Bytes()
	params, err := parseDigestParams(string(challenge))
	if err != nil {
		cl.bound = false
		return fmt.Errorf("ldap: parsing digest-challenge: %w", err)
	}
	response := computeDigestResponse(params, "ldap/"+strings.ToLower(host), username, password)
	req2 := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationBindRequest.Tag(), nil, "Bind Request")
	req2.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.Version), "Version"))
	req2.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "User Name"))
	auth2 := ber.NewPacket(ber.ClassContext, ber.TypeConstructed, 3, "", "authentication")
	auth2.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "DIGEST-MD5", "SASL Mech"))
	auth2.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, response, "Credentials"))
	req2.AppendChild(auth2)
	resp2, err := cl.do(req2)
	if err != nil {
		cl.bound = false
		return err
	}
	err = cl.decodeResult(resp2)
	cl.bound = err == nil
	return err
}

// BindNTLM performs an NTLMSSP bind with a plaintext password, using
// github.com/Azure/go-ntlmssp to build the negotiate/authenticate messages.
func (cl *Client) BindNTLM(domain, username, password string) error {
	return cl.ntlmBind(domain, username, password, "")
}

// BindNTLMWithHash performs a pass-the-hash NTLMSSP bind using a hex NTLM
// hash instead of a plaintext password.
func (cl *Client) BindNTLMWithHash(domain, username, hash string) error {
	return cl.ntlmBind(domain, username, "", hash)
}

func (cl *Client) ntlmBind(domain, username, password, hash string) error {
	if password == "" && hash == "" {
		return NewError(ErrorEmptyPassword, fmt.Errorf("ldap: empty password not allowed by the client"))
	}
	negMessage, err := ntlmssp.NewNegotiateMessage(domain, "")
	if err != nil {
		cl.bound = false
		return fmt.Errorf("ldap: creating NTLM negotiate message: %w", err)
	}
	req := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationBindRequest.Tag(), nil, "Bind Request")
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.Version), "Version"))
	req.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "User Name"))
	auth := ber.NewPacket(ber.ClassContext, ber.TypePrimitive, ber.TagEnumerated, negMessage, "authentication")
	req.AppendChild(auth)
	resp, err := cl.do(req)
	if err != nil {
		cl.bound = false
		return err
	}
	op := resp.Children[1]
	var ntlmChallenge []byte
	if len(op.Children) == 3 {
		ntlmChallenge = op.Children[1].ByteValue
	}
	if len(ntlmChallenge) < 7 || !bytes.Equal(ntlmChallenge[:7], []byte("NTLMSSP")) {
		err = cl.decodeResult(resp)
		cl.bound = false
		if err == nil {
			err = NewError(ErrorUnexpectedResponse, fmt.Errorf("ldap: NTLM challenge missing from bind response"))
		}
		return err
	}
	var responseMessage []byte
	if password != "" {
		responseMessage, err = ntlmssp.ProcessChallenge(ntlmChallenge, username, password, domain != "")
	} else {
		responseMessage, err = ntlmssp.ProcessChallengeWithHash(ntlmChallenge, username, hash)
	}
	if err != nil {
		cl.bound = false
		return fmt.Errorf("ldap: processing NTLM challenge: %w", err)
	}
	req2 := ber.NewPacket(ber.ClassApplication, ber.TypeConstructed, ldaputil.ApplicationBindRequest.Tag(), nil, "Bind Request")
	req2.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(cl.config.Version), "Version"))
	req2.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "User Name"))
	auth2 := ber.NewPacket(ber.ClassContext, ber.TypePrimitive, ber.TagEmbeddedPDV, responseMessage, "authentication")
	req2.AppendChild(auth2)
	resp2, err := cl.do(req2)
	if err != nil {
		cl.bound = false
		return err
	}
	err = cl.decodeResult(resp2)
	cl.bound = err == nil
	return err
}

// Logout sends an UnbindRequest, closes the socket, and clears bound and
// the discovered root DN. It always reports success, matching the
// fire-and-forget nature of LDAP's unbind operation.
func (cl *Client) Logout() error {
	if cl.conn == nil {
		return nil
	}
	seq := cl.nextSeq()
	envelope := ber.NewPacket(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, seq, "MessageID"))
	unbind := ber.NewPacket(ber.ClassApplication, ber.TypePrimitive, ldaputil.ApplicationUnbindRequest.Tag(), nil, "Unbind Request")
	envelope.AppendChild(unbind)
	cl.conn.WriteAll(envelope.Bytes())
	cl.Close()
	cl.rootDn = ""
	return nil
}

// parseDigestParams parses a DIGEST-MD5 challenge string, a comma-separated
// list of key=value pairs with optionally quoted values, tolerating any key
// ordering and surrounding whitespace.
func parseDigestParams(str string) (map[string]string, error) {
	m := make(map[string]string)
	var key, value string
	var state int
	for i := 0; i <= len(str); i++ {
		switch state {
		case 0: // reading key
			if i == len(str) {
				if key == "" {
					return m, nil
				}
				return nil, fmt.Errorf("ldap: syntax error in digest-challenge at %d", i)
			}
			switch {
			case str[i] == ' ' || str[i] == '\t':
				// tolerate whitespace between pairs
			case str[i] == '=':
				state = 1
			default:
				key += string(str[i])
			}
		case 1: // reading value
			if i == len(str) {
				m[strings.TrimSpace(key)] = value
				return m, nil
			}
			switch str[i] {
			case ',':
				m[strings.TrimSpace(key)] = value
				state = 0
				key, value = "", ""
			case '"':
				if value != "" {
					return nil, fmt.Errorf("ldap: syntax error in digest-challenge at %d", i)
				}
				state = 2
			default:
				value += string(str[i])
			}
		case 2: // inside quotes
			if i == len(str) {
				return nil, fmt.Errorf("ldap: unterminated quoted value in digest-challenge")
			}
			if str[i] != '"' {
				value += string(str[i])
			} else {
				state = 1
			}
		}
	}
	return m, nil
}

// computeDigestResponse implements the RFC 2831 response calculation:
// ha1 = hex(md5(md5(user:realm:pass) + ":" + nonce + ":" + cnonce [+ ":" + authzid]))
// ha2 = hex(md5("AUTHENTICATE:" + uri))
// response = hex(md5(ha1:nonce:nc:cnonce:qop:ha2))
func computeDigestResponse(params map[string]string, uri, username, password string) string {
	const nc = "00000001"
	const qop = "auth"
	cnonce := hex.EncodeToString(randomBytes(8))
	ha0 := md5Hash([]byte(username + ":" + params["realm"] + ":" + password))
	a1 := bytes.NewBuffer(ha0)
	a1.WriteString(":" + params["nonce"] + ":" + cnonce)
	if len(params["authzid"]) > 0 {
		a1.WriteString(":" + params["authzid"])
	}
	a2 := bytes.NewBufferString("AUTHENTICATE:" + uri)
	ha1 := hex.EncodeToString(md5Hash(a1.Bytes()))
	ha2 := hex.EncodeToString(md5Hash(a2.Bytes()))
	kd := ha1 + ":" + params["nonce"] + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2
	resp := hex.EncodeToString(md5Hash([]byte(kd)))
	return fmt.Sprintf(
		`username="%s",realm="%s",nonce="%s",cnonce="%s",nc=%s,qop=%s,digest-uri="%s",response=%s`,
		username, params["realm"], params["nonce"], cnonce, nc, qop, uri, resp,
	)
}

func md5Hash(b []byte) []byte {
	sum := md5.Sum(b)
	return sum[:]
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}
