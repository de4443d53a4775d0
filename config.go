package ldap

import "crypto/tls"

// Search scope values (RFC 4511 §4.5.1.2).
const (
	ScopeBaseObject   = 0
	ScopeSingleLevel  = 1
	ScopeWholeSubtree = 2
)

// Alias dereferencing values (RFC 4511 §4.5.1.3).
const (
	NeverDerefAliases   = 0
	DerefInSearching    = 1
	DerefFindingBaseObj = 2
	DerefAlways         = 3
)

// Config holds the parameters that shape how a Client connects and how its
// Search calls default, mirroring the teacher's functional-option DialOpt
// pattern but generalized to the whole connection lifecycle rather than
// just the dial step.
type Config struct {
	TargetHost string
	TargetPort string
	TimeoutMs  int
	Version    int
	UseTLS     bool
	TLSConfig  *tls.Config

	SearchScope     int
	SearchAliases   int
	SearchSizeLimit int
	SearchTimeLimit int
	SearchPageSize  int
}

// DefaultConfig returns the configuration defaults named in the external
// interfaces section: localhost:389 (or :636 with TLS), LDAPv3, whole
// subtree search with alias dereferencing always on, no size/time/page
// limits.
func DefaultConfig() Config {
	return Config{
		TargetHost:      "localhost",
		TargetPort:      "389",
		TimeoutMs:       5000,
		Version:         3,
		SearchScope:     ScopeWholeSubtree,
		SearchAliases:   DerefAlways,
		SearchSizeLimit: 0,
		SearchTimeLimit: 0,
		SearchPageSize:  0,
	}
}

// Option configures a Config in New.
type Option func(*Config)

// WithHost sets the target host and port.
func WithHost(host, port string) Option {
	return func(c *Config) {
		c.TargetHost = host
		c.TargetPort = port
	}
}

// WithTimeout sets the connect timeout in milliseconds. Reads and writes on
// an open connection have no deadline.
func WithTimeout(ms int) Option {
	return func(c *Config) { c.TimeoutMs = ms }
}

// WithTLS enables implicit TLS (LDAPS) and changes the port to 636 when it
// is 389 at the time the option is applied.
func WithTLS(tc *tls.Config) Option {
	return func(c *Config) {
		c.UseTLS = true
		c.TLSConfig = tc
		if c.TargetPort == "389" {
			c.TargetPort = "636"
		}
	}
}

// WithVersion sets the LDAP protocol version (2 or 3).
func WithVersion(v int) Option {
	return func(c *Config) { c.Version = v }
}

// WithSearchDefaults overrides the default search scope, alias
// dereferencing behavior, size limit, time limit, and page size.
func WithSearchDefaults(scope, aliases, sizeLimit, timeLimit, pageSize int) Option {
	return func(c *Config) {
		c.SearchScope = scope
		c.SearchAliases = aliases
		c.SearchSizeLimit = sizeLimit
		c.SearchTimeLimit = timeLimit
		c.SearchPageSize = pageSize
	}
}
