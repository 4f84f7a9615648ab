// Package htmlutil provides HTML processing utilities for profile page scraping.
package htmlutil

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

var titlePattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// Title extracts the text of the first <title> element.
func Title(htmlContent string) string {
	if matches := titlePattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	return ""
}

// MetaContent returns the content attribute of the first <meta> tag whose
// property or name attribute equals key (case-insensitive). Attribute order and
// quoting style do not matter, and entities in the value are decoded.
func MetaContent(htmlContent, key string) string {
	z := xhtml.NewTokenizer(strings.NewReader(htmlContent))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return ""
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr || string(name) != "meta" {
				continue
			}
			if content, ok := metaAttrs(z, key); ok {
				return content
			}
		default:
		}
	}
}

func metaAttrs(z *xhtml.Tokenizer, key string) (string, bool) {
	var matched bool
	var content string
	for {
		k, v, more := z.TagAttr()
		switch string(k) {
		case "property", "name":
			if strings.EqualFold(string(v), key) {
				matched = true
			}
		case "content":
			content = strings.TrimSpace(string(v))
		default:
		}
		if !more {
			break
		}
	}
	return content, matched && content != ""
}
