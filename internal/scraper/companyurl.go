package scraper

import (
	"strings"
)

// CompanyPathMarker must appear in every accepted company link.
const CompanyPathMarker = "linkedin.com/company/"

// Paths that share the company prefix but lead to postings, feed posts or
// employee lists rather than the company page.
var excludedCompanyPaths = []string{"/jobs/", "/posts/", "/people/"}

// Search-filter parameters: a company link carrying them is a filtered job search.
var excludedCompanyParams = []string{"f_C=", "f_T="}

// IsValidCompanyURL is the acceptance predicate for company-link candidates.
func IsValidCompanyURL(u string) bool {
	if u == "" || !strings.Contains(u, CompanyPathMarker) {
		return false
	}
	for _, p := range excludedCompanyPaths {
		if strings.Contains(u, p) {
			return false
		}
	}
	if strings.Contains(u, "?") {
		for _, p := range excludedCompanyParams {
			if strings.Contains(u, p) {
				return false
			}
		}
	}
	// A bare ".../company/" has no slug and would not survive canonicalization.
	return strings.Contains(CanonicalCompanyURL(u), CompanyPathMarker)
}

// CanonicalCompanyURL drops the query string, the fragment and trailing slashes.
// Applying it twice yields the same value.
func CanonicalCompanyURL(u string) string {
	if idx := strings.IndexAny(u, "?#"); idx > -1 {
		u = u[:idx]
	}
	return strings.TrimRight(u, "/")
}

// CompanyURL validates and canonicalizes in one step; "" means rejected.
func CompanyURL(u string) string {
	if !IsValidCompanyURL(u) {
		return ""
	}
	return CanonicalCompanyURL(u)
}
