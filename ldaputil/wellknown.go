package ldaputil

// Well-known container GUIDs published by Active Directory under each
// naming context, matched by GetWellKnownObjectDN against the GUID field of
// the "B:32:<GUID>:<DN>" values of the wellKnownObjects attribute.
const (
	WellKnownComputers                 = "AA312825768811D1ADED00C04FD8D5CD"
	WellKnownDeletedObjects             = "18E2EA80684F11D2B9AA00C04F79F805"
	WellKnownDomainControllers          = "A361B2FFFFD211D1AA4B00C04FD7D83A"
	WellKnownForeignSecurityPrincipals = "22B70C67D56E4EFB91E9300FCA3DC1AA"
	WellKnownInfrastructure             = "2FBAC1870ADE11D297C400C04FD8D5CD"
	WellKnownLostAndFound               = "AB8153B7768811D1ADED00C04FD8D5CD"
	WellKnownMicrosoftProgramData       = "F4BE92A4C777485E878E9421D53087DB"
	WellKnownNtdsQuotas                 = "6227F0AF1FC2410D8E3BB10615BB5B0F"
	WellKnownProgramData                = "09460C08AE1E4A4EA0F64AEE7DAA1E5A"
	WellKnownSystems                    = "AB1D30F3768811D1ADED00C04FD8D5CD"
	WellKnownUsers                      = "A9D1CA15768811D1ADED00C04FD8D5CD"
	WellKnownManagedServiceAccounts     = "1EB93889E40C45DF9F0C64D23BBB6237"
)

// WellKnownGUIDs maps the human name used by GetWellKnownObjectDN's caller
// to the corresponding 32 character GUID constant.
var WellKnownGUIDs = map[string]string{
	"Computers":                 WellKnownComputers,
	"DeletedObjects":            WellKnownDeletedObjects,
	"DomainControllers":         WellKnownDomainControllers,
	"ForeignSecurityPrincipals": WellKnownForeignSecurityPrincipals,
	"Infrastructure":            WellKnownInfrastructure,
	"LostAndFound":              WellKnownLostAndFound,
	"MicrosoftProgramData":      WellKnownMicrosoftProgramData,
	"NtdsQuotas":                WellKnownNtdsQuotas,
	"ProgramData":               WellKnownProgramData,
	"Systems":                   WellKnownSystems,
	"Users":                     WellKnownUsers,
	"ManagedServiceAccounts":    WellKnownManagedServiceAccounts,
}
