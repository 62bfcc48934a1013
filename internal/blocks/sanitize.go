package blocks

import "regexp"

// Rich-text block content arrives as HTML-ish markup produced by whatever
// editing widget the frontend uses. Strip anything executable before it is
// handed to a renderer. The markup itself stays opaque otherwise.

var (
	scriptTagRE  = regexp.MustCompile(`(?is)<\s*(script|iframe|object|embed)\b[^>]*>.*?<\s*/\s*(script|iframe|object|embed)\s*>`)
	loneTagRE    = regexp.MustCompile(`(?i)<\s*(script|iframe|object|embed)\b[^>]*/?\s*>`)
	eventAttrRE  = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsProtocolRE = regexp.MustCompile(`(?i)(href|src)\s*=\s*(["']?)\s*javascript:[^"'>\s]*(["']?)`)
)

// SanitizeMarkup strips script/iframe/object/embed elements, inline event
// handler attributes and javascript: URLs from a markup string.
func SanitizeMarkup(s string) string {
	if s == "" {
		return s
	}
	s = scriptTagRE.ReplaceAllString(s, "")
	s = loneTagRE.ReplaceAllString(s, "")
	s = eventAttrRE.ReplaceAllString(s, "")
	s = jsProtocolRE.ReplaceAllString(s, `$1=$2$3`)
	return s
}
