// Package converter turns geosite domain lists into AdBlock Plus rules.
package converter

import "context"

// LineKind classifies one physical line of a geosite list.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line.
	LineBlank LineKind = iota
	// LineComment is a full-line comment, already rewritten to ABP syntax.
	LineComment
	// LineDiscard is a line with nothing left after stripping an inline
	// comment, or a directive without a value.
	LineDiscard
	// LineInclude pulls in another list by name.
	LineInclude
	// LineRegexp is a regexp: rule.
	LineRegexp
	// LineFull is a full: exact-match rule.
	LineFull
	// LineDomain is a plain domain rule matching subdomains too.
	LineDomain
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineDiscard:
		return "discard"
	case LineInclude:
		return "include"
	case LineRegexp:
		return "regexp"
	case LineFull:
		return "full"
	case LineDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// Directive is the classified form of a line. Value holds the include
// target, the raw pattern, the raw domain, or the rewritten comment.
type Directive struct {
	Kind  LineKind
	Value string
}

// MatchKind selects the ABP anchor for a domain rule.
type MatchKind int

const (
	// MatchSubdomains renders ||domain.
	MatchSubdomains MatchKind = iota
	// MatchExact renders |domain.
	MatchExact
)

// Fetcher returns the text body behind url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Result is the output of resolving one root item.
type Result struct {
	Item      string
	RootURL   string
	Lines     []string
	RuleCount int
	Fetches   int
	// Failures counts lists in the tree that could not be fetched.
	Failures int
}
