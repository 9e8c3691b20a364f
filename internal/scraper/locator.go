package scraper

import (
	"fmt"
	"strings"

	"linkedin-jobs-scraper/internal/dom"
)

// Locator is one strategy for finding an element inside a scope. Each calls visit
// for every candidate in document order and stops as soon as visit returns false.
type Locator interface {
	Each(scope dom.Element, chains ChainSet, visit func(dom.Element) bool)
	String() string
}

// Selector is a structural or attribute CSS selector.
type Selector string

func (s Selector) Each(scope dom.Element, _ ChainSet, visit func(dom.Element) bool) {
	for _, el := range scope.FindAll(string(s)) {
		if !visit(el) {
			return
		}
	}
}

func (s Selector) String() string {
	return string(s)
}

// Relative resolves another field first and then looks for Selector inside the
// element it found, e.g. the anchor nested in the company-name element.
type Relative struct {
	Of       Field
	Selector string
}

func (r Relative) Each(scope dom.Element, chains ChainSet, visit func(dom.Element) bool) {
	chain, ok := chains[r.Of]
	if !ok {
		return
	}
	base, ok := chain.First(scope, chains)
	if !ok {
		return
	}
	for _, el := range base.FindAll(r.Selector) {
		if !visit(el) {
			return
		}
	}
}

func (r Relative) String() string {
	return fmt.Sprintf("$%s %s", r.Of, r.Selector)
}

// TextScan walks every element under the scope whose text contains one of Markers
// and yields its descendants matching Selector.
type TextScan struct {
	Markers  []string
	Selector string
}

func (t TextScan) Each(scope dom.Element, _ ChainSet, visit func(dom.Element) bool) {
	for _, el := range scope.FindAll("*") {
		if !containsAny(el.Text(), t.Markers) {
			continue
		}
		for _, candidate := range el.FindAll(t.Selector) {
			if !visit(candidate) {
				return
			}
		}
	}
}

func (t TextScan) String() string {
	return fmt.Sprintf("text:%s => %s", strings.Join(t.Markers, "|"), t.Selector)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// ParseLocator reads the compact string form used in selector files:
//
//	a.job-card-container__link               CSS selector
//	$company a                               selector inside the resolved company element
//	text:Company|View page => a[href*='/company/']
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty locator")
	}

	switch {
	case strings.HasPrefix(s, "$"):
		field, sel, ok := strings.Cut(s[1:], " ")
		sel = strings.TrimSpace(sel)
		if !ok || field == "" || sel == "" {
			return nil, fmt.Errorf("relative locator %q: want \"$field selector\"", s)
		}
		return Relative{Of: Field(field), Selector: sel}, nil

	case strings.HasPrefix(s, "text:"):
		markers, sel, ok := strings.Cut(strings.TrimPrefix(s, "text:"), "=>")
		sel = strings.TrimSpace(sel)
		if !ok || sel == "" {
			return nil, fmt.Errorf("text locator %q: want \"text:marker|marker => selector\"", s)
		}
		var list []string
		for _, m := range strings.Split(markers, "|") {
			if m = strings.TrimSpace(m); m != "" {
				list = append(list, m)
			}
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("text locator %q has no markers", s)
		}
		return TextScan{Markers: list, Selector: sel}, nil
	}

	return Selector(s), nil
}

// Chain is the ordered fallback list for one field. Resolution is a first-match fold:
// the first locator that yields a candidate wins and later locators are not tried.
type Chain struct {
	Field    Field
	Locators []Locator
}

// ChainSet indexes chains by field so Relative locators can reach their base field.
type ChainSet map[Field]Chain

// First returns the first element any locator yields.
func (c Chain) First(scope dom.Element, chains ChainSet) (dom.Element, bool) {
	var found dom.Element
	for _, loc := range c.Locators {
		loc.Each(scope, chains, func(el dom.Element) bool {
			found = el
			return false
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// FirstAccepted tries locators in order and returns the first candidate accept
// agrees to. With exhaustive unset only the first candidate of each locator is
// considered, matching single-element lookup semantics; with it set every
// candidate of a locator is tried before moving on.
func (c Chain) FirstAccepted(scope dom.Element, chains ChainSet, exhaustive bool, accept func(dom.Element) bool) (dom.Element, bool) {
	var found dom.Element
	for _, loc := range c.Locators {
		loc.Each(scope, chains, func(el dom.Element) bool {
			if accept(el) {
				found = el
				return false
			}
			return exhaustive
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func parseChain(field Field, specs []string) (Chain, error) {
	chain := Chain{Field: field}
	for _, spec := range specs {
		loc, err := ParseLocator(spec)
		if err != nil {
			return Chain{}, fmt.Errorf("%s: %w", field, err)
		}
		chain.Locators = append(chain.Locators, loc)
	}
	return chain, nil
}

func (c Chain) hasRelative() bool {
	for _, loc := range c.Locators {
		if _, ok := loc.(Relative); ok {
			return true
		}
	}
	return false
}
