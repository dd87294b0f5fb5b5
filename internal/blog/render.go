package blog

import (
	"bytes"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

const wordpressDateLayout = "2006-01-02T15:04:05"

// Renderer turns WordPress-authored HTML and Markdown into markup safe to embed in a page.
type Renderer struct {
	policy   *bluemonday.Policy
	inline   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewRenderer builds a Renderer using the user-generated-content policy.
func NewRenderer() *Renderer {
	inline := bluemonday.NewPolicy()
	inline.AllowElements("em", "strong", "i", "b", "code", "span", "sup", "sub")
	return &Renderer{
		policy:   bluemonday.UGCPolicy(),
		inline:   inline,
		markdown: goldmark.New(),
	}
}

// HTML sanitizes a block of post HTML.
func (r *Renderer) HTML(raw string) template.HTML {
	return template.HTML(r.policy.Sanitize(raw))
}

// Inline sanitizes HTML that sits inside a heading or link, such as post titles.
func (r *Renderer) Inline(raw string) template.HTML {
	return template.HTML(r.inline.Sanitize(raw))
}

// Markdown renders src and sanitizes the result. Conversion failures fall back to escaped text.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "i": true, "mark": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true,
}

// PlainText strips markup from fragment and collapses whitespace. Script and style bodies are dropped.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if !inlineTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

// Summarize returns PlainText(fragment) cut to at most limit runes on a word boundary.
func Summarize(fragment string, limit int) string {
	text := PlainText(fragment)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// FormatDate renders a WordPress post date for display. Unparseable values are returned as-is.
func FormatDate(raw *string) string {
	if raw == nil {
		return ""
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{wordpressDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return value
}
