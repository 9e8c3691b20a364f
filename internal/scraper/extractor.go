package scraper

import (
	"fmt"
	"strings"
	"time"

	"linkedin-jobs-scraper/internal/checksum"
	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/observability"
)

// DefaultMaxResults applies when Options.MaxResults is not positive.
const DefaultMaxResults = 50

type Options struct {
	// IncludeCompanyURL runs the three-stage company-link fallback on every card.
	IncludeCompanyURL bool
	MaxResults        int
	// TitleKeywords restricts accepted titles; empty accepts any non-empty title.
	TitleKeywords []string
}

type Extractor struct {
	resolver *Resolver
	dates    *DateParser
	checksum *checksum.Generator
	logger   *observability.Logger
	now      func() time.Time
}

func NewExtractor(resolver *Resolver, logger *observability.Logger) *Extractor {
	return &Extractor{
		resolver: resolver,
		dates:    NewDateParser(),
		checksum: checksum.NewGenerator(),
		logger:   logger,
		now:      time.Now,
	}
}

// Extract turns the card-set under root into records, in DOM order, stopping at the
// result ceiling. A page without cards yields OutcomeEmpty rather than an error.
func (e *Extractor) Extract(root dom.Element, opts Options) *Result {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	keywords := lowerAll(opts.TitleKeywords)

	selector, cards := e.resolver.Cards(root)
	res := &Result{
		CardSelector: selector,
		CardsFound:   len(cards),
	}
	if len(cards) == 0 {
		res.Outcome = OutcomeEmpty
		return res
	}
	e.logger.Debug("Cards resolved", "selector", selector, "count", len(cards))

	seen := make(map[string]struct{}, len(cards))
	for i, card := range cards {
		if len(res.Records) >= limit {
			break
		}
		res.CardsProcessed++

		rec, err := e.card(card, i, opts.IncludeCompanyURL)
		if err != nil {
			res.Faults++
			e.logger.Warn("Card skipped", "index", i, "error", err)
			continue
		}
		if !accept(rec.Title, keywords) {
			res.Rejected++
			continue
		}

		key := e.dedupKey(rec)
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		res.Records = append(res.Records, *rec)
	}

	return res
}

// card builds one record. Panics raised by the scope binding are contained here so a
// single malformed card never aborts the page.
func (e *Extractor) card(card dom.Element, index int, withCompanyURL bool) (rec *ListingRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("card %d: %w: %v", index, ErrExtractionFault, r)
		}
	}()

	scrapedAt := e.now().UTC()
	rec = &ListingRecord{
		ID:        e.resolver.CardID(card, index),
		Title:     e.resolver.Text(card, FieldTitle),
		Company:   e.resolver.Text(card, FieldCompany),
		Location:  e.resolver.Text(card, FieldLocation),
		URL:       e.resolver.Link(card),
		ScrapedAt: scrapedAt,
	}

	text, datetime := e.resolver.PostedDate(card)
	rec.PostedDate = text
	if datetime != "" {
		rec.PostedAt = e.dates.ISODay(datetime, scrapedAt)
	}
	if rec.PostedAt == "" && text != "" {
		rec.PostedAt = e.dates.ISODay(text, scrapedAt)
	}

	if withCompanyURL {
		rec.CompanyURL = e.resolver.CompanyURL(card)
	}
	return rec, nil
}

func (e *Extractor) dedupKey(rec *ListingRecord) string {
	if rec.URL != "" {
		return rec.URL
	}
	return "hash:" + e.checksum.ListingHash(checksum.Fields{
		Title:      rec.Title,
		Company:    rec.Company,
		Location:   rec.Location,
		PostedDate: rec.PostedDate,
	})
}

func accept(title string, keywords []string) bool {
	if title == "" {
		return false
	}
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
