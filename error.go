package ldap

import (
	"fmt"

	"adldap/ber"
	"adldap/ldaputil"
)

// Client-side error codes, distinct from the LDAP result codes in
// ldaputil.ResultCodeMap: these never come from the wire, they describe a
// failure the client detected on its own (no connection, timeout, short
// read, malformed response envelope).
const (
	ErrorNetwork            = 200
	ErrorFilterCompile      = 201
	ErrorUnexpectedResponse = 202
	ErrorEmptyPassword      = 203
	ErrorUnexpectedMessageID = 204
)

var clientErrorNames = map[uint16]string{
	ErrorNetwork:             "Network Error",
	ErrorFilterCompile:       "Filter Compile Error",
	ErrorUnexpectedResponse:  "Unexpected Response",
	ErrorEmptyPassword:       "Empty Password",
	ErrorUnexpectedMessageID: "Unexpected Message ID",
}

// Error is the error type returned by every operation in this package. A
// non-zero ResultCode means the server responded with an LDAP result code;
// a code from the client-side block above means the client detected the
// failure itself before or without getting a server response.
type Error struct {
	Err        error
	ResultCode uint16
	MatchedDN  string
	Packet     *ber.Packet
}

func (e *Error) Error() string {
	name, ok := ldaputil.ResultCodeMap[e.ResultCode]
	if !ok {
		name, ok = clientErrorNames[e.ResultCode]
	}
	if !ok {
		name = "Unknown Error"
	}
	return fmt.Sprintf("LDAP Result Code %d %q: %s", e.ResultCode, name, e.Err.Error())
}

// NewError wraps err as an Error with the given result code.
func NewError(resultCode uint16, err error) error {
	return &Error{ResultCode: resultCode, Err: err}
}

// IsErrorWithCode reports whether err is an *Error with the given result code.
func IsErrorWithCode(err error, code uint16) bool {
	if err == nil {
		return code == ldaputil.ResultSuccess
	}
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.ResultCode == code
}

// IsErrorAnyOf reports whether err is an *Error with any of the given result codes.
func IsErrorAnyOf(err error, codes ...uint16) bool {
	for _, c := range codes {
		if IsErrorWithCode(err, c) {
			return true
		}
	}
	return false
}

// getLDAPError inspects a decoded response envelope's result fields and
// returns nil if resultCode == 0, otherwise an *Error describing the
// failure. diagnosticMessage, if empty, is synthesized from
// ldaputil.ResultCodeMap.
func getLDAPError(resultCode uint16, matchedDN, diagnosticMessage string, packet *ber.Packet) error {
	if resultCode == ldaputil.ResultSuccess {
		return nil
	}
	msg := diagnosticMessage
	if msg == "" {
		if name, ok := ldaputil.ResultCodeMap[resultCode]; ok {
			msg = name
		} else {
			msg = "Unknown Result Code"
		}
	}
	return &Error{
		Err:        fmt.Errorf("%s", msg),
		ResultCode: resultCode,
		MatchedDN:  matchedDN,
		Packet:     packet,
	}
}
