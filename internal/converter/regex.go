package converter

import "strings"

// TranslateRegex rewrites RE2 text anchors to their ECMAScript form and
// escapes slashes so the pattern can sit inside /.../. Only occurrences not
// preceded by a backslash are touched; everything else passes through.
func TranslateRegex(pattern string) string {
	pattern = replaceUnescaped(pattern, `\A`, "^")
	pattern = replaceUnescaped(pattern, `\z`, "$")
	pattern = replaceUnescaped(pattern, `\Z`, "$")
	return replaceUnescaped(pattern, "/", `\/`)
}

// FormatRegexRule wraps a translated pattern as an ABP regex rule.
func FormatRegexRule(pattern string) string {
	return "/" + TranslateRegex(pattern) + "/"
}

func replaceUnescaped(s, token, repl string) string {
	if !strings.Contains(s, token) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(repl))
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], token) && (i == 0 || s[i-1] != '\\') {
			b.WriteString(repl)
			i += len(token)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
