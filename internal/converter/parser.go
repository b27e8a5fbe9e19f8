package converter

import (
	"strings"
)

const (
	includePrefix = "include:"
	regexpPrefix  = "regexp:"
	fullPrefix    = "full:"
)

// Classify decides what a raw geosite line is. The first matching rule wins:
// blank, full-line comment (#, //, !), then the inline comment is stripped
// and the remainder is checked for include:, regexp: and full: before
// falling back to a plain domain.
func Classify(raw string) Directive {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Directive{Kind: LineBlank}
	case strings.HasPrefix(s, "#"):
		return Directive{Kind: LineComment, Value: "!" + s[1:]}
	case strings.HasPrefix(s, "//"):
		return Directive{Kind: LineComment, Value: "!" + s[2:]}
	case strings.HasPrefix(s, "!"):
		return Directive{Kind: LineComment, Value: s}
	}

	s = strings.TrimRight(stripInlineComment(s), " \t\r\n\v\f")
	if s == "" {
		return Directive{Kind: LineDiscard}
	}

	if v, ok := cutDirective(s, includePrefix); ok {
		return valued(LineInclude, v)
	}
	if v, ok := cutDirective(s, regexpPrefix); ok {
		return valued(LineRegexp, v)
	}
	if v, ok := cutDirective(s, fullPrefix); ok {
		return valued(LineFull, v)
	}
	return Directive{Kind: LineDomain, Value: s}
}

// stripInlineComment cuts s at the first @ or # not preceded by a backslash.
// Attribute tags such as @ads end the rule the same way a comment does.
func stripInlineComment(s string) string {
	for i := 0; i < len(s); i++ {
		if (s[i] == '@' || s[i] == '#') && (i == 0 || s[i-1] != '\\') {
			return s[:i]
		}
	}
	return s
}

// cutDirective matches prefix case-insensitively and returns the trimmed value
// with its original case.
func cutDirective(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

func valued(kind LineKind, v string) Directive {
	if v == "" {
		return Directive{Kind: LineDiscard}
	}
	return Directive{Kind: kind, Value: v}
}
