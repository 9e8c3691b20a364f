package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed snapshot of a rendered page.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse builds a Document from rendered HTML. pageURL is used to resolve relative
// hrefs the way the browser does for element.href; it may be empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &Document{doc: doc}
	if pageURL != "" {
		base, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
		d.base = base
		doc.Url = base
	}
	return d, nil
}

// ParseString is Parse over an in-memory HTML string.
func ParseString(html, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(html), pageURL)
}

// Root returns the document node as an Element.
func (d *Document) Root() Element {
	return &node{sel: d.doc.Selection, base: d.base}
}

// URL is the address the snapshot was taken from.
func (d *Document) URL() string {
	if d.base == nil {
		return ""
	}
	return d.base.String()
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

type node struct {
	sel  *goquery.Selection
	base *url.URL
}

// goquery matches nothing for a selector cascadia cannot compile, so a broken
// selector in a chain degrades to a miss instead of an error.
func (n *node) FindAll(selector string) []Element {
	found := n.sel.Find(selector)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &node{sel: s, base: n.base})
	})
	return out
}

func (n *node) Text() string {
	return n.sel.Text()
}

func (n *node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *node) Href() string {
	switch goquery.NodeName(n.sel) {
	case "a", "area", "link":
	default:
		return ""
	}

	raw, ok := n.sel.Attr("href")
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if n.base == nil {
		return raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return n.base.ResolveReference(ref).String()
}

func (n *node) Parent() (Element, bool) {
	parent := n.sel.Parent()
	if parent.Length() == 0 {
		return nil, false
	}
	return &node{sel: parent, base: n.base}, true
}
