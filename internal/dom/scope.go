// Package dom defines the document scope the extraction code runs against.
//
// Extraction never talks to a browser directly: the page collaborator hands over a
// snapshot of the rendered document and every lookup goes through Element.
package dom

// Element is one node of a rendered document. The root node of a snapshot is also
// an Element, so card-scoped and page-scoped lookups share one contract.
type Element interface {
	// FindAll returns every descendant matching the CSS selector, in document order.
	FindAll(selector string) []Element
	// Text is the raw text content of the node and its descendants.
	Text() string
	Attr(name string) (string, bool)
	// Href is the absolute link target of an anchor-like node, or "" when the node
	// carries no link.
	Href() string
	Parent() (Element, bool)
}
