// Package sanitize turns model output formatted as markdown into plain text
// suitable for a Telegram message sent without a parse mode.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockTags      = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?ul>|</?ol>`)
	listItemOpen   = regexp.MustCompile(`<li>`)
	repeatedBreaks = regexp.MustCompile(`\n\s*\n+`)
)

// Policy strips markdown and HTML.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewTelegramPolicy creates a Policy producing plain text.
func NewTelegramPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

// PlainText renders text as markdown and strips every tag, keeping line
// structure. On a rendering error the input is returned unchanged.
func (p *Policy) PlainText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return text
	}

	rendered := blockTags.ReplaceAllString(buf.String(), "\n")
	rendered = listItemOpen.ReplaceAllString(rendered, "• ")

	out := p.policy.Sanitize(rendered)
	out = repeatedBreaks.ReplaceAllString(out, "\n\n")
	out = html.UnescapeString(out)
	return strings.TrimSpace(out)
}
