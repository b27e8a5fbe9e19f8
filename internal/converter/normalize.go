package converter

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var protocolPattern = regexp.MustCompile(`^[\w+\-.]+://`)

// NormalizeDomain reduces a rule body to a bare hostname: scheme, path and
// port are dropped, then a leading "*." and any leading dots. An empty
// result means the rule carries no usable domain.
func NormalizeDomain(s string) string {
	s = protocolPattern.ReplaceAllString(s, "")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "*.")
	return strings.TrimLeft(s, ".")
}

// ToASCII converts an internationalized domain to punycode. Domains the
// IDNA profile rejects are returned unchanged.
func ToASCII(domain string) string {
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil || ascii == "" {
		return domain
	}
	return ascii
}

// FormatDomainRule renders a normalized domain as an ABP rule.
func FormatDomainRule(domain string, kind MatchKind) string {
	if kind == MatchExact {
		return "|" + domain
	}
	return "||" + domain
}
