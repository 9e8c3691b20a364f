package scraper

import (
	"fmt"
)

// DefaultSelectors returns the built-in tables for LinkedIn listing and detail pages.
// Newer layouts come first; the tail of each list covers legacy and guest markup.
func DefaultSelectors() *Selectors {
	return &Selectors{
		Cards: []string{
			"[data-occludable-job-id]",
			".jobs-search__results-list .job-card-container",
			".job-search-card",
			"[data-job-id]",
			".base-card",
			".job-card-list__title",
			".jobs-search-results-list .job-card-container",
			".job-search-card__contents",
			"[data-test-id*='job-card']",
			".job-search-card__contents-wrapper",
			".base-search-card",
			".jobs-search-two-pane__job-card-container",
			".job-card-container",
			".job-card",
			"[data-occludable-entity-urn]",
			"[data-control-name='job_card']",
		},
		IDAttributes: []string{
			"data-occludable-job-id",
			"data-job-id",
		},
		Title: []string{
			".base-card__full-link",
			"h3 a",
			".job-card-list__title",
			".job-search-card__title",
			"a[data-control-name]",
			"h3",
			"a",
			".job-card-container__link",
			".base-search-card__title",
			"[data-test-id*='job-title']",
		},
		Company: []string{
			".hidden-nested-link",
			".job-search-card__subtitle-link",
			".job-card-container__company-name",
			".job-card-company-name",
			"[data-field='experience-company-logo'] + span",
			".job-card-container__company-name a",
			".base-search-card__subtitle",
			"[data-test-id*='company-name']",
		},
		Location: []string{
			".job-search-card__location",
			".job-result-card__location",
			".job-card-container__metadata-item",
			".job-card-location",
			".base-search-card__location",
			"[data-test-id*='location']",
		},
		PostedDate: []string{
			".job-search-card__listdate",
			"time",
			".job-card-container__footer-job-time",
			".job-card-container__time-posted",
			"[data-test-id*='posted-date']",
		},
		Link: []string{
			".base-card__full-link",
			"h3 a",
			"a[data-control-name]",
			"a",
			".job-card-container__link",
			".base-search-card__title",
			"[data-test-id*='job-title'] a",
		},
		CompanyLink: []string{
			".hidden-nested-link",
			".job-search-card__subtitle-link",
			".job-card-container__company-name a",
			".job-card-company-name a",
			".base-card__subtitle a",
			"a[data-field='experience-company-logo']",
			"[data-test-id*='company-logo'] a",
			"[data-test-id*='company-name'] a",
			".job-creator-module a",
			".company-details-link",
			".top-card-layout__card a[href*='/company/']",
			"a[href*='/company/']",
			"a[aria-label*='company']",
			"a[aria-label*='Company']",
			"$company a",
			"span[class*='company'] a",
			"div[class*='company'] a",
			"span[class*='Company'] a",
			"div[class*='Company'] a",
		},
		DetailCompanyLink: []string{
			"a[href*='/company/']",
			".top-card-layout__card a[href*='/company/']",
			".jobs-company__link[href*='/company/']",
			"[data-field='company-details-link']",
			".ember-view a[href*='/company/']",
			".topcard__org-name-link[href*='/company/']",
			".job-details-company__link[href*='/company/']",
			".company-name-link[href*='/company/']",
			".org-nav-item a[href*='/company/']",
			"div[data-test-id='entity-name'] a[href*='/company/']",
			"span[aria-label*='Company'] a[href*='/company/']",
			"a[href*='linkedin.com/company/']",
			"text:Company|View page => a[href*='/company/']",
		},
	}
}

// WithDefaults fills every list left empty from the built-in tables, so a selectors
// file only needs to list what it overrides.
func (s *Selectors) WithDefaults() *Selectors {
	def := DefaultSelectors()
	out := *s
	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&out.Cards, def.Cards)
	fill(&out.IDAttributes, def.IDAttributes)
	fill(&out.Title, def.Title)
	fill(&out.Company, def.Company)
	fill(&out.Location, def.Location)
	fill(&out.PostedDate, def.PostedDate)
	fill(&out.Link, def.Link)
	fill(&out.CompanyLink, def.CompanyLink)
	fill(&out.DetailCompanyLink, def.DetailCompanyLink)
	return &out
}

// Tables is the compiled, ready-to-evaluate form of Selectors.
type Tables struct {
	Cards             []string
	IDAttributes      []string
	Chains            ChainSet
	DetailCompanyLink Chain
}

// Compile parses every locator and checks that relative locators point at a
// plain field chain.
func Compile(s *Selectors) (*Tables, error) {
	if len(s.Cards) == 0 {
		return nil, fmt.Errorf("cards selectors are required")
	}
	if len(s.Title) == 0 {
		return nil, fmt.Errorf("title selectors are required")
	}

	specs := []struct {
		field Field
		list  []string
	}{
		{FieldTitle, s.Title},
		{FieldCompany, s.Company},
		{FieldLocation, s.Location},
		{FieldPostedDate, s.PostedDate},
		{FieldLink, s.Link},
		{FieldCompanyLink, s.CompanyLink},
	}

	t := &Tables{
		Cards:        s.Cards,
		IDAttributes: s.IDAttributes,
		Chains:       make(ChainSet, len(specs)),
	}
	for _, spec := range specs {
		chain, err := parseChain(spec.field, spec.list)
		if err != nil {
			return nil, err
		}
		t.Chains[spec.field] = chain
	}

	detail, err := parseChain(FieldCompanyLink, s.DetailCompanyLink)
	if err != nil {
		return nil, fmt.Errorf("detail %w", err)
	}
	t.DetailCompanyLink = detail

	all := append([]Chain{detail}, chainsOf(t.Chains)...)
	for _, chain := range all {
		for _, loc := range chain.Locators {
			rel, ok := loc.(Relative)
			if !ok {
				continue
			}
			target, ok := t.Chains[rel.Of]
			if !ok {
				return nil, fmt.Errorf("%s: locator %q refers to unknown field %q", chain.Field, rel, rel.Of)
			}
			if target.hasRelative() {
				return nil, fmt.Errorf("%s: locator %q refers to %q which is itself relative", chain.Field, rel, rel.Of)
			}
		}
	}

	return t, nil
}

// MustCompileDefaults compiles the built-in tables; they are known to be valid.
func MustCompileDefaults() *Tables {
	t, err := Compile(DefaultSelectors())
	if err != nil {
		panic(err)
	}
	return t
}

func chainsOf(set ChainSet) []Chain {
	out := make([]Chain, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}
