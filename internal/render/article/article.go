// Package article turns an item's HTML content into plain wrapped lines
// for the reading pane.
package article

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"

	"feeddeck/internal/feedapi"
)

// block is a flattened chunk of article text with a presentation hint.
type block struct {
	text   string
	prefix string // applied to the first wrapped line
	indent string // applied to continuation lines
}

// ContentLines renders an item's HTML content as wrapped plain-text lines.
// Unparseable or empty content falls back to the unescaped raw text.
func ContentLines(item feedapi.Item, width int) []string {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		return nil
	}
	if width < 1 {
		width = 1
	}

	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + content + "</body></html>"))
	if err != nil {
		return wrap(strings.TrimSpace(html.UnescapeString(content)), width)
	}
	body := findBody(doc)
	if body == nil {
		return wrap(strings.TrimSpace(html.UnescapeString(content)), width)
	}

	c := collector{base: parseBase(item.URL)}
	c.walk(body)
	c.flush()

	var lines []string
	for i, b := range c.blocks {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, wrapBlock(b, width)...)
	}
	return lines
}

type collector struct {
	base    *url.URL
	blocks  []block
	pending strings.Builder
	listPos int
}

func (c *collector) flush() {
	text := strings.Join(strings.Fields(c.pending.String()), " ")
	c.pending.Reset()
	if text != "" {
		c.blocks = append(c.blocks, block{text: text})
	}
}

func (c *collector) emit(b block) {
	c.flush()
	b.text = strings.Join(strings.Fields(b.text), " ")
	if b.text != "" {
		c.blocks = append(c.blocks, b)
	}
}

func (c *collector) walk(node *nethtml.Node) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case nethtml.TextNode:
			c.pending.WriteString(html.UnescapeString(child.Data))
		case nethtml.ElementNode:
			c.element(child)
		}
	}
}

func (c *collector) element(node *nethtml.Node) {
	switch strings.ToLower(node.Data) {
	case "script", "style", "head", "iframe", "noscript":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.emit(block{text: strings.ToUpper(rawText(node))})
	case "p", "div", "article", "section", "figure", "figcaption", "footer", "header":
		c.flush()
		c.walk(node)
		c.flush()
	case "br":
		c.flush()
	case "ul":
		c.flush()
		for li := node.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == nethtml.ElementNode && strings.EqualFold(li.Data, "li") {
				c.emit(block{text: rawText(li), prefix: "- ", indent: "  "})
			}
		}
	case "ol":
		c.flush()
		n := 0
		for li := node.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == nethtml.ElementNode && strings.EqualFold(li.Data, "li") {
				n++
				c.emit(block{text: rawText(li), prefix: fmt.Sprintf("%d. ", n), indent: "   "})
			}
		}
	case "blockquote":
		c.flush()
		sub := collector{base: c.base}
		sub.walk(node)
		sub.flush()
		for _, b := range sub.blocks {
			b.prefix = "> " + b.prefix
			b.indent = "> " + b.indent
			c.blocks = append(c.blocks, b)
		}
	case "pre":
		c.flush()
		for _, line := range strings.Split(strings.Trim(rawTextPreserving(node), "\n"), "\n") {
			c.blocks = append(c.blocks, block{text: line, prefix: "    ", indent: "    "})
		}
	case "img":
		alt := attr(node, "alt")
		if alt == "" {
			alt = "image"
		}
		c.emit(block{text: "[" + alt + "]"})
	case "a":
		c.walk(node)
		if href := c.resolveLink(attr(node, "href")); href != "" {
			c.pending.WriteString(" (" + href + ")")
		}
	case "hr":
		c.emit(block{text: "---"})
	default:
		c.walk(node)
	}
}

// resolveLink turns an anchor href into an absolute http(s) URL, resolving
// relative references against the article's own URL. Anything else (mailto,
// javascript, unresolvable relatives) renders as bare link text.
func (c *collector) resolveLink(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if c.base != nil {
		u = c.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func parseBase(rawURL string) *url.URL {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	base, err := url.Parse(rawURL)
	if err != nil || !base.IsAbs() {
		return nil
	}
	return base
}

// wrapBlock greedily wraps a block to width, honoring its prefix on the
// first line and indent on the rest.
func wrapBlock(b block, width int) []string {
	avail := width - len(b.prefix)
	if avail < 1 {
		avail = 1
	}

	var out []string
	line := ""
	for _, word := range strings.Fields(b.text) {
		for len(word) > avail {
			if line != "" {
				out = append(out, line)
				line = ""
			}
			out = append(out, word[:avail])
			word = word[avail:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= avail:
			line += " " + word
		default:
			out = append(out, line)
			line = word
		}
	}
	if line != "" {
		out = append(out, line)
	}

	for i := range out {
		if i == 0 {
			out[i] = b.prefix + out[i]
		} else {
			out[i] = b.indent + out[i]
		}
	}
	return out
}

func wrap(text string, width int) []string {
	if text == "" {
		return nil
	}
	return wrapBlock(block{text: text}, width)
}

func findBody(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBody(child); found != nil {
			return found
		}
	}
	return nil
}

func rawText(node *nethtml.Node) string {
	return strings.Join(strings.Fields(rawTextPreserving(node)), " ")
}

func rawTextPreserving(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == nethtml.TextNode {
		return html.UnescapeString(node.Data)
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(rawTextPreserving(child))
	}
	return b.String()
}

func attr(node *nethtml.Node, name string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, name) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
