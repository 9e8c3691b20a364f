package scraper

import (
	"errors"
	"time"
)

// ListingRecord is one extracted job posting. Empty strings mean "not found".
type ListingRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	PostedDate string `json:"postedDate"`
	// PostedAt is PostedDate resolved to a calendar day (YYYY-MM-DD) when possible.
	PostedAt   string    `json:"postedAt,omitempty"`
	URL        string    `json:"url"`
	CompanyURL string    `json:"companyUrl,omitempty"`
	ScrapedAt  time.Time `json:"scrapedAt"`
}

// HasCompanyURL reports whether enrichment or card resolution produced a company link.
func (r ListingRecord) HasCompanyURL() bool {
	return r.CompanyURL != ""
}

// Selectors is the YAML form of the selector tables. Every list is ordered from the
// most specific / current layout to the most generic / legacy one.
type Selectors struct {
	Cards             []string `yaml:"cards"`
	IDAttributes      []string `yaml:"id_attributes"`
	Title             []string `yaml:"title"`
	Company           []string `yaml:"company"`
	Location          []string `yaml:"location"`
	PostedDate        []string `yaml:"posted_date"`
	Link              []string `yaml:"link"`
	CompanyLink       []string `yaml:"company_link"`
	DetailCompanyLink []string `yaml:"detail_company_link"`
}

// Field names one logical value of a card.
type Field string

const (
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldPostedDate  Field = "posted_date"
	FieldLink        Field = "link"
	FieldCompanyLink Field = "company_link"
)

// Outcome distinguishes a page with listings from an empty or challenge page.
type Outcome int

const (
	OutcomeListings Outcome = iota
	// OutcomeEmpty means no container selector matched a single card. Either the
	// search returned nothing or the source served a block/challenge page.
	OutcomeEmpty
)

func (o Outcome) String() string {
	if o == OutcomeEmpty {
		return "empty"
	}
	return "listings"
}

// Result is what one extraction pass over a page produced.
type Result struct {
	Records      []ListingRecord
	Outcome      Outcome
	CardSelector string
	CardsFound   int
	// CardsProcessed stops short of CardsFound once MaxResults is reached.
	CardsProcessed int
	Rejected       int
	Duplicates     int
	Faults         int
}

// Empty reports the EmptyResult condition.
func (r *Result) Empty() bool {
	return r.Outcome == OutcomeEmpty
}

// ErrExtractionFault marks a card that could not be processed.
var ErrExtractionFault = errors.New("extraction fault")
