package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Directive
	}{
		{"empty", "", Directive{Kind: LineBlank}},
		{"whitespace", " \t ", Directive{Kind: LineBlank}},
		{"hash comment", "# hello", Directive{Kind: LineComment, Value: "! hello"}},
		{"slash comment", "// hello", Directive{Kind: LineComment, Value: "! hello"}},
		{"abp comment", "! hello", Directive{Kind: LineComment, Value: "! hello"}},
		{"indented comment", "   # x", Directive{Kind: LineComment, Value: "! x"}},
		{"domain", "example.com", Directive{Kind: LineDomain, Value: "example.com"}},
		{"attribute stripped", "example.com @ads", Directive{Kind: LineDomain, Value: "example.com"}},
		{"attribute no space", "example.com@ads", Directive{Kind: LineDomain, Value: "example.com"}},
		{"inline comment", "example.com # note", Directive{Kind: LineDomain, Value: "example.com"}},
		{"only attribute", "@ads", Directive{Kind: LineDiscard}},
		{"full", "full:example.com", Directive{Kind: LineFull, Value: "example.com"}},
		{"full upper keyword", "FULL:Example.com", Directive{Kind: LineFull, Value: "Example.com"}},
		{"full empty", "full:", Directive{Kind: LineDiscard}},
		{"full spaced", "full:  example.com  ", Directive{Kind: LineFull, Value: "example.com"}},
		{"include", "include:other-list", Directive{Kind: LineInclude, Value: "other-list"}},
		{"include mixed case", "Include: Other", Directive{Kind: LineInclude, Value: "Other"}},
		{"include with attr", "include:google @cn", Directive{Kind: LineInclude, Value: "google"}},
		{"include empty", "include:", Directive{Kind: LineDiscard}},
		{"regexp", `regexp:^ads\d+\.example\.com$`, Directive{Kind: LineRegexp, Value: `^ads\d+\.example\.com$`}},
		{"regexp empty", "regexp:   ", Directive{Kind: LineDiscard}},
		{"escaped hash kept", `regexp:a\#b`, Directive{Kind: LineRegexp, Value: `a\#b`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "regexp", LineRegexp.String())
	assert.Equal(t, "unknown", LineKind(99).String())
}
