package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"http://example.com", "example.com"},
		{"https://example.com/path/to?q=1", "example.com"},
		{"git+ssh://example.com:22/repo", "example.com"},
		{"example.com:8080", "example.com"},
		{"*.example.com", "example.com"},
		{".example.com", "example.com"},
		{"..example.com", "example.com"},
		{"*.*.example.com", "*.example.com"},
		{"/path/only", ""},
		{":443", ""},
		{"*.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDomain(tt.in))
		})
	}
}

func TestNormalizeDomainIdempotent(t *testing.T) {
	for _, d := range []string{"example.com", "a.b.example.co.uk", "xn--fiqs8s", "localhost"} {
		assert.Equal(t, d, NormalizeDomain(d))
		assert.Equal(t, NormalizeDomain(d), NormalizeDomain(NormalizeDomain(d)))
	}
}

func TestFormatDomainRule(t *testing.T) {
	assert.Equal(t, "||example.com", FormatDomainRule("example.com", MatchSubdomains))
	assert.Equal(t, "|example.com", FormatDomainRule("example.com", MatchExact))
}

func TestToASCII(t *testing.T) {
	assert.Equal(t, "xn--fiqs8s", ToASCII("中国"))
	assert.Equal(t, "example.com", ToASCII("example.com"))
}
