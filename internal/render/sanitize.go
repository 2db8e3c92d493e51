package render

import (
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy
)

// textSanitizer strips all markup. Its output is entity-escaped text.
func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// richSanitizer keeps inline formatting and links for paragraph blocks.
func richSanitizer() *bluemonday.Policy {
	richPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "br", "small", "code", "span")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		policy.AllowAttrs("class").OnElements("span", "code")
		richPolicy = policy
	})
	return richPolicy
}

func headingHTML(text string, level int) template.HTML {
	if level < 1 || level > 6 {
		level = 2
	}
	cleaned := strings.TrimSpace(textSanitizer().Sanitize(text))
	return template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, cleaned, level))
}

func paragraphHTML(text string) template.HTML {
	return template.HTML(strings.TrimSpace(richSanitizer().Sanitize(text)))
}
