// Command ldapadmin is a small command-line client for the operations this
// module supports: bind, search, and Active Directory computer-account
// creation, useful for exercising a directory server without pulling in a
// full LDAP browser.
package main

import (
	"crypto/tls"
	"flag"
	"log"
	"strings"

	ldap "adldap"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix)

	var (
		host        string
		port        string
		useTLS      bool
		insecure    bool
		username    string
		password    string
		baseDN      string
		filterStr   string
		attrsCSV    string
		op          string
		computer    string
		parentDN    string
		deleteFirst bool
		pageSize    uint
		debug       bool
	)
	flag.StringVar(&host, "host", "localhost", "directory server host")
	flag.StringVar(&port, "port", "389", "directory server port")
	flag.BoolVar(&useTLS, "tls", false, "connect over implicit TLS (LDAPS)")
	flag.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	flag.StringVar(&username, "user", "", "bind DN or username")
	flag.StringVar(&password, "pass", "", "bind password")
	flag.StringVar(&baseDN, "base", "", "search base DN")
	flag.StringVar(&filterStr, "filter", "(objectclass=*)", "RFC 4515 search filter")
	flag.StringVar(&attrsCSV, "attrs", "", "comma-separated attribute list")
	flag.StringVar(&op, "op", "search", "operation: search, rootdn, addcomputer")
	flag.StringVar(&computer, "computer", "", "computer account name for -op=addcomputer")
	flag.StringVar(&parentDN, "parent", "", "parent DN for -op=addcomputer")
	flag.BoolVar(&deleteFirst, "delete-if-present", false, "delete an existing computer account before recreating it")
	flag.UintVar(&pageSize, "page-size", 0, "RFC 2696 paged-results page size, 0 disables paging")
	flag.BoolVar(&debug, "debug", false, "trace BER packets to the standard logger")
	flag.Parse()

	opts := []ldap.Option{ldap.WithHost(host, port)}
	if useTLS {
		opts = append(opts, ldap.WithTLS(&tls.Config{InsecureSkipVerify: insecure}))
	}
	cl := ldap.New(opts...)
	cl.SetDebug(debug)

	if err := cl.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer cl.Logout()

	if err := cl.Bind(username, password); err != nil {
		log.Fatalf("bind: %v", err)
	}

	var attrs []string
	if attrsCSV != "" {
		attrs = strings.Split(attrsCSV, ",")
	}

	switch op {
	case "rootdn":
		root, err := cl.DiscoverRootDN()
		if err != nil {
			log.Fatalf("discover root dn: %v", err)
		}
		log.Printf("root DN: %s", root)
	case "addcomputer":
		if computer == "" || parentDN == "" {
			log.Fatalf("addcomputer requires -computer and -parent")
		}
		ok, msg, err := cl.AddComputer(computer, parentDN, password, deleteFirst)
		if err != nil {
			log.Fatalf("add computer: %v", err)
		}
		log.Printf("add computer: ok=%v message=%q", ok, msg)
	default:
		result, err := cl.SearchPaged(baseDN, filterStr, attrs, uint32(pageSize))
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		for _, entry := range result.Entries {
			log.Printf("dn: %s", entry.DN)
			for _, a := range entry.Attributes.All() {
				for i := range a.Values {
					log.Printf("  %s: %s", a.Name, a.Readable(i))
				}
			}
		}
		for _, ref := range result.Referrals {
			log.Printf("referral: %s", ref)
		}
	}
}
