package ldap

import (
	"log"

	"adldap/ber"
)

// debugging gates the verbose packet tracing used while diagnosing bind,
// search, and modify traffic against a directory server.
type debugging bool

// SetDebug enables or disables packet tracing to the standard logger.
func (cl *Client) SetDebug(on bool) {
	cl.debug = debugging(on)
}

func (debug debugging) Printf(format string, args ...interface{}) {
	if debug {
		log.Printf(format, args...)
	}
}

func (debug debugging) PrintPacket(packet *ber.Packet) {
	if debug {
		packet.PrettyPrint(log.Writer(), 0)
	}
}
