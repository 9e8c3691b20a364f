package scraper

import (
	"fmt"

	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/normalize"
)

const companyAnchorSelector = "a[href*='/company/']"

// Resolver evaluates selector chains against a card or a whole detail page.
type Resolver struct {
	tables *Tables
	norm   *normalize.Normalizer
}

func NewResolver(tables *Tables, norm *normalize.Normalizer) *Resolver {
	return &Resolver{
		tables: tables,
		norm:   norm,
	}
}

// Cards resolves the card-set. The first container selector with at least one match
// wins and every card comes from that selector; cards are never re-resolved.
func (r *Resolver) Cards(root dom.Element) (string, []dom.Element) {
	for _, selector := range r.tables.Cards {
		cards := root.FindAll(selector)
		if len(cards) > 0 {
			return selector, cards
		}
	}
	return "", nil
}

// Element returns the first match of the field's chain.
func (r *Resolver) Element(scope dom.Element, field Field) (dom.Element, bool) {
	chain, ok := r.tables.Chains[field]
	if !ok {
		return nil, false
	}
	return chain.First(scope, r.tables.Chains)
}

// Text resolves a text field. A miss is "".
func (r *Resolver) Text(scope dom.Element, field Field) string {
	el, ok := r.Element(scope, field)
	if !ok {
		return ""
	}
	return r.norm.Text(el.Text())
}

// PostedDate returns the posted-date text, falling back to the datetime attribute of
// the same element when the text is empty. The attribute is also returned on its own.
func (r *Resolver) PostedDate(scope dom.Element) (text, datetime string) {
	el, ok := r.Element(scope, FieldPostedDate)
	if !ok {
		return "", ""
	}
	attr, _ := el.Attr("datetime")
	attr = r.norm.Text(attr)

	text = r.norm.Text(el.Text())
	if text == "" {
		text = attr
	}
	return text, attr
}

// Link is the canonical detail-page URL of a card, "" when unresolved.
func (r *Resolver) Link(scope dom.Element) string {
	el, ok := r.Element(scope, FieldLink)
	if !ok {
		return ""
	}
	return normalize.JobURL(el.Href())
}

// CardID reads the card's native identifier, falling back to job_<index>.
func (r *Resolver) CardID(card dom.Element, index int) string {
	for _, attr := range r.tables.IDAttributes {
		if v, ok := card.Attr(attr); ok {
			if v = r.norm.Text(v); v != "" {
				return v
			}
		}
	}
	return fmt.Sprintf("job_%d", index)
}

// CompanyURL resolves a card's company link in three stages, each gated by the
// validity predicate:
//  1. the company-link chain, first candidate of each locator;
//  2. every anchor under the card;
//  3. company-path anchors under the parent of the resolved company-name element.
func (r *Resolver) CompanyURL(card dom.Element) string {
	valid := func(el dom.Element) bool {
		return IsValidCompanyURL(el.Href())
	}

	if el, ok := r.tables.Chains[FieldCompanyLink].FirstAccepted(card, r.tables.Chains, false, valid); ok {
		return CompanyURL(el.Href())
	}

	for _, a := range card.FindAll("a") {
		if valid(a) {
			return CompanyURL(a.Href())
		}
	}

	company, ok := r.Element(card, FieldCompany)
	if !ok || r.norm.Text(company.Text()) == "" {
		return ""
	}
	parent, ok := company.Parent()
	if !ok {
		return ""
	}
	for _, a := range parent.FindAll(companyAnchorSelector) {
		if valid(a) {
			return CompanyURL(a.Href())
		}
	}
	return ""
}

// DetailCompanyURL runs the detail-page chain against a whole document. Every
// candidate of a locator is considered before the next locator is tried.
func (r *Resolver) DetailCompanyURL(root dom.Element) string {
	valid := func(el dom.Element) bool {
		return IsValidCompanyURL(el.Href())
	}
	el, ok := r.tables.DetailCompanyLink.FirstAccepted(root, r.tables.Chains, true, valid)
	if !ok {
		return ""
	}
	return CompanyURL(el.Href())
}
