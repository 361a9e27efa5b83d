package metadata

import (
	"strings"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"golang.org/x/net/html"
)

// skipped elements never contribute to the body excerpt
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"aside":    true,
	"iframe":   true,
	"noscript": true,
}

// Extract reads metadata from a parsed document.
// Priority: og:title > <title>, og:description > meta description.
func Extract(doc *html.Node) domain.FetchedMetadata {
	var ogTitle, ogDescription, ogImage, metaDescription, pageTitle string
	var body *html.Node
	var mains []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				property := strings.ToLower(attr(n, "property"))
				name := strings.ToLower(attr(n, "name"))
				content := strings.TrimSpace(attr(n, "content"))
				switch {
				case property == "og:title" && ogTitle == "":
					ogTitle = content
				case property == "og:description" && ogDescription == "":
					ogDescription = content
				case property == "og:image" && ogImage == "":
					ogImage = content
				case name == "description" && metaDescription == "":
					metaDescription = content
				}
			case "title":
				if pageTitle == "" {
					pageTitle = strings.TrimSpace(textOf(n))
				}
			case "body":
				body = n
			case "article", "main":
				mains = append(mains, n)
				return
			default:
				if strings.EqualFold(attr(n, "role"), "main") {
					mains = append(mains, n)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var content string
	switch {
	case len(mains) > 0:
		parts := make([]string, 0, len(mains))
		for _, m := range mains {
			parts = append(parts, contentText(m))
		}
		content = strings.Join(parts, " ")
	case body != nil:
		content = contentText(body)
	}

	return domain.FetchedMetadata{
		Title:       firstNonEmpty(ogTitle, pageTitle),
		Description: firstNonEmpty(ogDescription, metaDescription),
		Image:       ogImage,
		Content:     Excerpt(content, ExcerptLimit),
	}
}

// Excerpt collapses whitespace and truncates to limit characters.
func Excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		s = strings.TrimSpace(string(r[:limit]))
	}
	return s
}

// contentText concatenates the text under n, skipping non-content elements.
func contentText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
