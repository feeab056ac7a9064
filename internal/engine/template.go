package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateContext holds the resolved values substituted into message
// templates.
type TemplateContext struct {
	Countdown string
	Arrival   string
	Express   string
	Threshold string
}

var (
	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	// bareDomainPattern accepts "example.com/..." style URLs with no scheme.
	bareDomainPattern = regexp.MustCompile(`^[a-z0-9][-a-z0-9]*\.`)
)

// SubstitutePlaceholders replaces every occurrence of the known placeholders
// with their context values. {lb} is a line-break marker resolved by the
// rendering layer, not here; unknown placeholders pass through unchanged.
func SubstitutePlaceholders(template string, ctx TemplateContext) string {
	out := template
	out = strings.ReplaceAll(out, "{countdown}", ctx.Countdown)
	out = strings.ReplaceAll(out, "{arrival}", ctx.Arrival)
	out = strings.ReplaceAll(out, "{express}", ctx.Express)
	out = strings.ReplaceAll(out, "{threshold}", ctx.Threshold)
	return out
}

// RenderMarkdown converts the supported inline markdown to HTML: **text**
// becomes <strong>, and [text](url) becomes a link when the URL is
// acceptable. A URL is accepted if it starts with http://, https://, or /,
// or looks like a bare domain, in which case https:// is prepended. Any
// other URL leaves the whole token in the output literally.
func RenderMarkdown(s string) string {
	out := boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	out = linkPattern.ReplaceAllStringFunc(out, func(token string) string {
		m := linkPattern.FindStringSubmatch(token)
		text, url := m[1], m[2]
		href, ok := acceptURL(url)
		if !ok {
			return token
		}
		return fmt.Sprintf(`<a href="%s">%s</a>`, href, text)
	})
	return out
}

func acceptURL(url string) (string, bool) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "/"):
		return url, true
	case bareDomainPattern.MatchString(url):
		return "https://" + url, true
	default:
		return "", false
	}
}
