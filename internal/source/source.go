// Package source maps rule item names to upstream URLs.
package source

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const (
	// KnownTemplate serves the curated lists published by Loyalsoldier/v2ray-rules-dat.
	KnownTemplate = "https://raw.githubusercontent.com/Loyalsoldier/v2ray-rules-dat/release/{it}.txt"
	// CommunityTemplate serves any list under v2fly/domain-list-community/data.
	CommunityTemplate = "https://raw.githubusercontent.com/v2fly/domain-list-community/master/data/{it}"

	placeholder = "{it}"
)

// DefaultKnown lists the curated rule sets served by KnownTemplate.
var DefaultKnown = []string{
	"gfw",
	"china-list",
	"apple-cn",
	"google-cn",
	"win-spy",
	"win-update",
	"win-extra",
}

var inputSeparator = regexp.MustCompile(`[,\s]+`)

// Catalog decides which URL template a root item resolves through.
type Catalog struct {
	known             map[string]struct{}
	knownTemplate     string
	communityTemplate string
}

// NewCatalog creates a Catalog. Empty templates fall back to the defaults.
func NewCatalog(known []string, knownTemplate, communityTemplate string) *Catalog {
	if knownTemplate == "" {
		knownTemplate = KnownTemplate
	}
	if communityTemplate == "" {
		communityTemplate = CommunityTemplate
	}
	return &Catalog{
		known:             lo.SliceToMap(known, func(it string) (string, struct{}) { return it, struct{}{} }),
		knownTemplate:     knownTemplate,
		communityTemplate: communityTemplate,
	}
}

// DefaultCatalog returns the Catalog built from DefaultKnown and the default templates.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultKnown, KnownTemplate, CommunityTemplate)
}

// IsKnown reports whether item is one of the curated names.
func (c *Catalog) IsKnown(item string) bool {
	_, ok := c.known[item]
	return ok
}

// TemplateFor returns the template for a root item. Included names reuse
// the template of their root, so this is only consulted once per root.
func (c *Catalog) TemplateFor(item string) string {
	if c.IsKnown(item) {
		return c.knownTemplate
	}
	return c.communityTemplate
}

// Expand substitutes item into template.
func Expand(template, item string) string {
	return strings.ReplaceAll(template, placeholder, item)
}

// ParseItems splits comma or whitespace separated tokens into item names.
// Order and duplicates are preserved.
func ParseItems(args []string) []string {
	raw := strings.Join(args, " ")
	parts := lo.Map(inputSeparator.Split(raw, -1), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}
