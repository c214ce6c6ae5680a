package main

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxTitleLength = 200
	excerptLength  = 120
)

var lower = cases.Lower(language.Und)

// normalizeTags lowercases and trims tags, dropping blanks and repeats while
// keeping the order they were first seen in. A nil input stays nil.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = lower.String(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func checkTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalid("Title cannot be more than 200 characters")
	}
	return nil
}

// htmlText returns the text content of an HTML fragment with runs of
// whitespace collapsed, and whether it contains an image.
func htmlText(fragment string) (string, bool) {
	var b strings.Builder
	hasImage := false

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " "), hasImage
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "img":
				hasImage = true
			case "p", "br", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
				b.WriteByte(' ')
			}
		}
	}
}

// contentEmpty reports whether rich-text content has nothing a reader would
// see, such as the "<p><br></p>" an editor leaves behind.
func contentEmpty(content string) bool {
	text, hasImage := htmlText(content)
	return text == "" && !hasImage
}

func excerpt(content string) string {
	text, _ := htmlText(content)
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptLength]) + "..."
}
