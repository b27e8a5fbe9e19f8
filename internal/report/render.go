// Package report renders resolved rule blocks into an AutoProxy/ABP document.
package report

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	// BlockWidth is the total width of a border line, including the leading "!".
	BlockWidth = 48
	// TimestampLayout formats the Last Modified header.
	TimestampLayout = "2006-01-02 15:04:05 -0700"
)

// BorderLine renders the marker that opens or closes an item's block,
// e.g. "!-------------------gfw BEGIN-------------------".
func BorderLine(item, kind string) string {
	width := BlockWidth - 1
	core := item + " " + kind
	if utf8.RuneCountInString(core) > width {
		core = string([]rune(core)[:width])
	}
	return "!" + center(core, width, '-')
}

// center pads s to width, giving the odd extra column to the left when
// both the margin and the width are odd.
func center(s string, width int, pad rune) string {
	margin := width - utf8.RuneCountInString(s)
	if margin <= 0 {
		return s
	}
	left := margin/2 + (margin & width & 1)
	fill := string(pad)
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, margin-left)
}

// Header renders the file header naming every root item and the generation time.
func Header(items []string, now time.Time) string {
	sources := lo.Map(items, func(it string, _ int) string { return "geosite:" + it })

	var b strings.Builder
	b.WriteString("[AutoProxy 0.2.9]\n")
	b.WriteString("! The ruleset contains: " + strings.Join(sources, ", ") + "\n")
	b.WriteString("! Last Modified: " + now.Format(TimestampLayout) + "\n")
	b.WriteString("! This list is generated by Geosite2ABP (https://github.com/stultulo/Geosite2ABP)\n")
	b.WriteString("! It is based on data from:\n")
	b.WriteString("! 1. v2fly/domain-list-community (MIT License)\n")
	b.WriteString("! 2. Loyalsoldier/v2ray-rules-dat (GPL-3.0-or-later License)\n")
	b.WriteString("\n")
	return b.String()
}

// Block wraps an item's lines in BEGIN/EOF borders. The returned text has no
// trailing newline.
func Block(item string, lines []string) string {
	out := make([]string, 0, len(lines)+4)
	out = append(out, BorderLine(item, "BEGIN"), "")
	if len(lines) > 0 {
		out = append(out, lines...)
		out = append(out, "")
	}
	out = append(out, BorderLine(item, "EOF"))
	return strings.Join(out, "\n")
}
