package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy

	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// SanitizeHTML keeps the inline and block markup configs use in page
// descriptions and widgets and drops everything else (scripts, handlers,
// styles).
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richSanitizer().Sanitize(trimmed))
}

// StripHTML removes every tag and returns unescaped text for labels and
// terminal output.
func StripHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainSanitizer().Sanitize(trimmed)))
}

func richSanitizer() *bluemonday.Policy {
	richPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"p", "br", "strong", "b", "em", "i", "u", "small", "span",
			"ul", "ol", "li", "h3", "h4", "blockquote",
		)
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		policy.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		richPolicy = policy
	})
	return richPolicy
}

func plainSanitizer() *bluemonday.Policy {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return plainPolicy
}
